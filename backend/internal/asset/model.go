package asset

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex - вершина меша: позиция, текстурные координаты, нормаль
type Vertex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec2
	Normal   mgl32.Vec3
}

// Mesh - один меш модели с собственным материалом
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Material int // индекс в Model.Materials, -1 если материала нет
}

// Material - материал из mtl-файла
type Material struct {
	Name    string
	Diffuse mgl32.Vec3
	// Texture - диффузная текстура, nil если материал без текстуры
	Texture image.Image
}

// Model - загруженная модель: набор мешей и материалов
type Model struct {
	Meshes    []Mesh
	Materials []Material
}

// objIndex - тройка индексов obj-грани: позиция/текстура/нормаль
type objIndex struct {
	pos, tex, norm int
}

type objParser struct {
	loader *Loader
	dir    string

	positions []mgl32.Vec3
	texCoords []mgl32.Vec2
	normals   []mgl32.Vec3

	model     *Model
	matByName map[string]int

	// текущий собираемый меш
	mesh     *Mesh
	vertexOf map[objIndex]uint32
}

// LoadModel читает и разбирает obj-модель вместе с mtl-материалами.
// Пути mtl и текстур берутся относительно каталога самой модели.
func (l *Loader) LoadModel(name string) (*Model, error) {
	text, err := l.LoadString(name)
	if err != nil {
		return nil, err
	}

	p := &objParser{
		loader:    l,
		dir:       filepath.Dir(name),
		model:     &Model{},
		matByName: make(map[string]int),
	}
	if err := p.parse(text); err != nil {
		return nil, fmt.Errorf("asset: ошибка разбора модели %q: %w", name, err)
	}
	return p.model, nil
}

func (p *objParser) parse(text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := p.parseLine(fields); err != nil {
			return fmt.Errorf("строка %d: %w", lineNo, err)
		}
	}
	p.flushMesh()
	return scanner.Err()
}

func (p *objParser) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)

	case "vt":
		if len(fields) < 3 {
			return fmt.Errorf("vt: мало компонент")
		}
		tx, err1 := parseFloat(fields[1])
		ty, err2 := parseFloat(fields[2])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("vt: неверные координаты")
		}
		// В obj ось V направлена снизу вверх, у нас - сверху вниз
		p.texCoords = append(p.texCoords, mgl32.Vec2{tx, 1 - ty})

	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		p.normals = append(p.normals, v)

	case "f":
		return p.parseFace(fields[1:])

	case "o", "g":
		p.flushMesh()
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		p.startMesh(name)

	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("usemtl: нет имени материала")
		}
		p.ensureMesh()
		idx, ok := p.matByName[fields[1]]
		if !ok {
			return fmt.Errorf("usemtl: неизвестный материал %q", fields[1])
		}
		p.mesh.Material = idx

	case "mtllib":
		if len(fields) < 2 {
			return fmt.Errorf("mtllib: нет имени файла")
		}
		if err := p.loadMaterials(fields[1]); err != nil {
			return err
		}

	case "s":
		// группы сглаживания не используются

	default:
		// незнакомые директивы молча пропускаются
	}
	return nil
}

// parseFace разбирает грань и триангулирует ее веером от первой вершины
func (p *objParser) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("f: грань из %d вершин", len(refs))
	}
	p.ensureMesh()

	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		oi, err := p.parseIndexRef(ref)
		if err != nil {
			return err
		}
		vi, err := p.vertexIndex(oi)
		if err != nil {
			return err
		}
		idx[i] = vi
	}

	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Indices = append(p.mesh.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// parseIndexRef разбирает ссылку вида "p", "p/t", "p//n" или "p/t/n".
// Отрицательные индексы отсчитываются с конца.
func (p *objParser) parseIndexRef(ref string) (objIndex, error) {
	parts := strings.Split(ref, "/")
	oi := objIndex{pos: -1, tex: -1, norm: -1}

	resolve := func(s string, count int) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("f: неверный индекс %q", s)
		}
		if n < 0 {
			n = count + n + 1
		}
		if n < 1 || n > count {
			return 0, fmt.Errorf("f: индекс %d вне диапазона [1, %d]", n, count)
		}
		return n - 1, nil
	}

	var err error
	if oi.pos, err = resolve(parts[0], len(p.positions)); err != nil {
		return oi, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if oi.tex, err = resolve(parts[1], len(p.texCoords)); err != nil {
			return oi, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if oi.norm, err = resolve(parts[2], len(p.normals)); err != nil {
			return oi, err
		}
	}
	return oi, nil
}

// vertexIndex возвращает индекс вершины в меше, создавая ее при первом
// упоминании. Одинаковые тройки индексов переиспользуют одну вершину.
func (p *objParser) vertexIndex(oi objIndex) (uint32, error) {
	if vi, ok := p.vertexOf[oi]; ok {
		return vi, nil
	}

	v := Vertex{Position: p.positions[oi.pos]}
	if oi.tex >= 0 {
		v.TexCoord = p.texCoords[oi.tex]
	}
	if oi.norm >= 0 {
		v.Normal = p.normals[oi.norm]
	}

	vi := uint32(len(p.mesh.Vertices))
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.vertexOf[oi] = vi
	return vi, nil
}

func (p *objParser) startMesh(name string) {
	p.mesh = &Mesh{Name: name, Material: -1}
	p.vertexOf = make(map[objIndex]uint32)
}

func (p *objParser) ensureMesh() {
	if p.mesh == nil {
		p.startMesh("")
	}
}

func (p *objParser) flushMesh() {
	if p.mesh != nil && len(p.mesh.Indices) > 0 {
		p.model.Meshes = append(p.model.Meshes, *p.mesh)
	}
	p.mesh = nil
	p.vertexOf = nil
}

// loadMaterials читает mtl-файл и регистрирует его материалы
func (p *objParser) loadMaterials(name string) error {
	text, err := p.loader.LoadString(filepath.Join(p.dir, name))
	if err != nil {
		return err
	}

	var cur *Material
	flush := func() {
		if cur != nil {
			p.matByName[cur.Name] = len(p.model.Materials)
			p.model.Materials = append(p.model.Materials, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "newmtl":
			flush()
			if len(fields) < 2 {
				return fmt.Errorf("newmtl: нет имени материала")
			}
			cur = &Material{Name: fields[1], Diffuse: mgl32.Vec3{1, 1, 1}}

		case "Kd":
			if cur == nil {
				continue
			}
			v, err := parseVec3(fields[1:])
			if err != nil {
				return fmt.Errorf("Kd: %w", err)
			}
			cur.Diffuse = v

		case "map_Kd":
			if cur == nil || len(fields) < 2 {
				continue
			}
			tex, err := p.loadTexture(fields[len(fields)-1])
			if err != nil {
				return err
			}
			cur.Texture = tex
		}
	}
	flush()
	return scanner.Err()
}

// loadTexture читает и декодирует диффузную текстуру (png или jpeg)
func (p *objParser) loadTexture(name string) (image.Image, error) {
	data, err := p.loader.LoadBytes(filepath.Join(p.dir, name))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("asset: ошибка декодирования текстуры %q: %w", name, err)
	}
	return img, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("мало компонент: %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := parseFloat(fields[i])
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("неверное число %q", fields[i])
		}
		v[i] = f
	}
	return v, nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}
