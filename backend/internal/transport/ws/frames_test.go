package ws

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/villuna/tumblin-down/backend/internal/render"
)

func sampleFrame(instances int) *render.Frame {
	frame := &render.Frame{
		Camera: render.CameraUniform{Position: mgl32.Vec4{1, 2, 3, 1}, Matrix: mgl32.Perspective(1, 1.5, 0.1, 100)},
		Light:  render.LightUniform{Position: mgl32.Vec4{2, 3, 2, 1}, Colour: mgl32.Vec4{0.96, 0.68, 1, 1}},
		Clear:  mgl32.Vec4{0.5, 0.82, 0.98, 1},
	}
	for i := 0; i < instances; i++ {
		frame.Instances = append(frame.Instances, render.InstanceRaw{
			Model:    mgl32.Translate3D(float32(i), 0, 0),
			Rotation: mgl32.Ident3(),
		})
	}
	return frame
}

func TestFrame_Roundtrip(t *testing.T) {
	frame := sampleFrame(7)

	data, err := EncodeFrame(frame)
	if err != nil {
		t.Fatalf("ошибка кодирования: %v", err)
	}
	decoded, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("ошибка декодирования: %v", err)
	}

	if decoded.Camera.Matrix != frame.Camera.Matrix {
		t.Error("матрица камеры исказилась")
	}
	if decoded.Light.Colour != frame.Light.Colour {
		t.Error("цвет света исказился")
	}
	if decoded.Clear != frame.Clear {
		t.Error("цвет заливки исказился")
	}
	if len(decoded.Instances) != 7 {
		t.Fatalf("инстансов %d, ожидалось 7", len(decoded.Instances))
	}
	if decoded.Instances[3].Model.At(0, 3) != 3 {
		t.Error("порядок инстансов нарушен")
	}
}

func TestFrame_EmptyInstances(t *testing.T) {
	data, err := EncodeFrame(sampleFrame(0))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Instances) != 0 {
		t.Errorf("пустой кадр декодировался с %d инстансами", len(decoded.Instances))
	}
}

func TestFrame_BadMagic(t *testing.T) {
	data, err := EncodeFrame(sampleFrame(1))
	if err != nil {
		t.Fatal(err)
	}
	data[0] ^= 0xff
	if _, err := DecodeFrame(data); err == nil {
		t.Error("битая сигнатура должна быть ошибкой")
	}
}

func TestFrame_Truncated(t *testing.T) {
	data, err := EncodeFrame(sampleFrame(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeFrame(data[:len(data)-10]); err == nil {
		t.Error("обрезанный кадр должен быть ошибкой")
	}
}
