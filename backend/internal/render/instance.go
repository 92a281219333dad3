package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/villuna/tumblin-down/backend/internal/physics"
)

// Instance - поза одного экземпляра модели в мировых координатах
type Instance struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// InstanceRaw - запись инстанса в том виде, в котором она уходит в буфер:
// матрица модели 4x4 плюс отдельная матрица вращения 3x3 для нормалей
type InstanceRaw struct {
	Model    mgl32.Mat4
	Rotation mgl32.Mat3
}

// ToRaw собирает матрицы инстанса: модель = перенос * вращение
func (i Instance) ToRaw() InstanceRaw {
	rot := i.Rotation.Mat4()
	return InstanceRaw{
		Model:    mgl32.Translate3D(i.Position.X(), i.Position.Y(), i.Position.Z()).Mul4(rot),
		Rotation: rot.Mat3(),
	}
}

// FromPose переводит позу физического тела в инстанс
func FromPose(p physics.Pose) Instance {
	return Instance{Position: p.Position, Rotation: p.Rotation}
}

// Extract выгружает позы всех живых инстансируемых тел симуляции.
// Последовательность пересобирается целиком каждый кадр: состав пула
// меняется по мере спавна и вытеснения, и записи от удаленных тел
// в выгрузку не попадают.
func Extract(sim *physics.Simulation) []InstanceRaw {
	poses := sim.Poses()
	raw := make([]InstanceRaw, len(poses))
	for i, p := range poses {
		raw[i] = FromPose(p).ToRaw()
	}
	return raw
}
