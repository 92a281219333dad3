package ws

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/villuna/tumblin-down/backend/internal/render"
)

// frameMagic помечает начало бинарного кадра: "TMBL" в little-endian
const frameMagic uint32 = 0x4c424d54

// EncodeFrame упаковывает кадр в бинарное сообщение.
// Формат, все числа little-endian float32 если не сказано иное:
//
//	magic      uint32
//	instances  uint32
//	камера:    позиция 4f, матрица вида-проекции 16f
//	свет:      позиция 4f, цвет 4f
//	заливка:   4f
//	инстансы:  по 25f на запись - матрица модели 16f, матрица нормалей 9f
func EncodeFrame(frame *render.Frame) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Grow(128 + len(frame.Instances)*100)

	fields := []interface{}{
		frameMagic,
		uint32(len(frame.Instances)),
		frame.Camera.Position,
		frame.Camera.Matrix,
		frame.Light.Position,
		frame.Light.Colour,
		frame.Clear,
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("ws: ошибка кодирования кадра: %w", err)
		}
	}
	for _, inst := range frame.Instances {
		if err := binary.Write(buf, binary.LittleEndian, inst); err != nil {
			return nil, fmt.Errorf("ws: ошибка кодирования инстанса: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeFrame разбирает бинарное сообщение обратно в кадр.
// Используется пробником и тестами.
func DecodeFrame(data []byte) (*render.Frame, error) {
	r := bytes.NewReader(data)

	var magic, count uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("ws: кадр обрезан: %w", err)
	}
	if magic != frameMagic {
		return nil, fmt.Errorf("ws: неверная сигнатура кадра: %#x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("ws: кадр обрезан: %w", err)
	}

	frame := &render.Frame{}
	fields := []interface{}{
		&frame.Camera.Position,
		&frame.Camera.Matrix,
		&frame.Light.Position,
		&frame.Light.Colour,
		&frame.Clear,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("ws: кадр обрезан: %w", err)
		}
	}

	frame.Instances = make([]render.InstanceRaw, count)
	for i := range frame.Instances {
		if err := binary.Read(r, binary.LittleEndian, &frame.Instances[i]); err != nil {
			return nil, fmt.Errorf("ws: инстанс %d обрезан: %w", i, err)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("ws: лишние %d байт в хвосте кадра", r.Len())
	}
	return frame, nil
}
