package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cellKey - целочисленные координаты ячейки пространственной сетки
type cellKey struct {
	x, y, z int
}

// spatialGrid - пространственная сетка для широкой фазы: тела раскладываются
// по ячейкам по своим AABB, кандидаты на контакт ищутся внутри ячеек
type spatialGrid struct {
	cellSize float32
	cells    map[cellKey][]*RigidBody
}

func newSpatialGrid(cellSize float32) *spatialGrid {
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*RigidBody),
	}
}

func (sg *spatialGrid) cellCoord(v float32) int {
	return int(math.Floor(float64(v / sg.cellSize)))
}

// rebuild заново раскладывает тела по ячейкам.
// Сетка перестраивается каждый шаг: тел немного, а инкрементальное
// обновление усложнило бы удаление тел из пула.
func (sg *spatialGrid) rebuild(bodies []*RigidBody) {
	for k := range sg.cells {
		delete(sg.cells, k)
	}

	for _, body := range bodies {
		min, max := body.aabb()
		sg.insert(body, min, max)
	}
}

func (sg *spatialGrid) insert(body *RigidBody, min, max mgl32.Vec3) {
	x0, x1 := sg.cellCoord(min.X()), sg.cellCoord(max.X())
	y0, y1 := sg.cellCoord(min.Y()), sg.cellCoord(max.Y())
	z0, z1 := sg.cellCoord(min.Z()), sg.cellCoord(max.Z())

	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				key := cellKey{x, y, z}
				sg.cells[key] = append(sg.cells[key], body)
			}
		}
	}
}

// bodyPair - упорядоченная пара тел-кандидатов на контакт
type bodyPair struct {
	a, b *RigidBody
}

// candidatePairs возвращает пары тел, чьи AABB делят хотя бы одну ячейку.
// Пары, где оба тела неподвижны или оба спят, отбрасываются сразу.
func (sg *spatialGrid) candidatePairs() []bodyPair {
	seen := make(map[[2]Handle]struct{})
	var pairs []bodyPair

	for _, cell := range sg.cells {
		for i := 0; i < len(cell); i++ {
			for j := i + 1; j < len(cell); j++ {
				a, b := cell[i], cell[j]
				if a.Type == BodyFixed && b.Type == BodyFixed {
					continue
				}
				if a.sleeping && b.sleeping {
					continue
				}

				key := [2]Handle{a.handle, b.handle}
				if a.handle > b.handle {
					key[0], key[1] = key[1], key[0]
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}

				if aabbOverlap(a, b) {
					pairs = append(pairs, bodyPair{a, b})
				}
			}
		}
	}
	return pairs
}

// aabbOverlap проверяет пересечение мировых AABB двух тел
func aabbOverlap(a, b *RigidBody) bool {
	minA, maxA := a.aabb()
	minB, maxB := b.aabb()
	for i := 0; i < 3; i++ {
		if maxA[i] < minB[i] || maxB[i] < minA[i] {
			return false
		}
	}
	return true
}
