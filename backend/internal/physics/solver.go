package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// prepare вычисляет вспомогательные величины контакта до итераций:
// касательные направления, целевую скорость отскока и коррекцию Baumgarte
func (c *contact) prepare(cfg *Config, dt float32) {
	// Ортонормированный базис касательной плоскости
	var t1 mgl32.Vec3
	if absf(c.normal.X()) > 0.9 {
		t1 = c.normal.Cross(mgl32.Vec3{0, 1, 0})
	} else {
		t1 = c.normal.Cross(mgl32.Vec3{1, 0, 0})
	}
	t1 = t1.Normalize()
	c.tangents[0] = t1
	c.tangents[1] = c.normal.Cross(t1)

	// Отскок считается от скорости сближения на входе в решатель
	vn := c.relativeVelocity().Dot(c.normal)
	if vn < -cfg.RestitutionThreshold {
		c.restitutionBias = -c.restitution * vn
	}

	pen := c.depth - cfg.ContactSlop
	if pen > 0 && dt > 0 {
		c.positionBias = cfg.Baumgarte / dt * pen
	}
}

// relativeVelocity возвращает скорость сближения тел в точке контакта
func (c *contact) relativeVelocity() mgl32.Vec3 {
	return c.b.velocityAt(c.point).Sub(c.a.velocityAt(c.point))
}

// effectiveMass возвращает эффективную массу контакта вдоль направления dir
func (c *contact) effectiveMass(dir mgl32.Vec3) float32 {
	ra := c.point.Sub(c.a.Position)
	rb := c.point.Sub(c.b.Position)

	k := c.a.invMass + c.b.invMass
	k += c.a.applyInvInertia(ra.Cross(dir)).Cross(ra).Dot(dir)
	k += c.b.applyInvInertia(rb.Cross(dir)).Cross(rb).Dot(dir)
	return k
}

// applyImpulse прикладывает импульс в точке контакта: +p телу b, -p телу a
func (c *contact) applyImpulse(p mgl32.Vec3) {
	ra := c.point.Sub(c.a.Position)
	rb := c.point.Sub(c.b.Position)

	c.a.LinVel = c.a.LinVel.Sub(p.Mul(c.a.invMass))
	c.a.AngVel = c.a.AngVel.Sub(c.a.applyInvInertia(ra.Cross(p)))

	c.b.LinVel = c.b.LinVel.Add(p.Mul(c.b.invMass))
	c.b.AngVel = c.b.AngVel.Add(c.b.applyInvInertia(rb.Cross(p)))
}

// solveVelocity выполняет одну итерацию последовательных импульсов
// по нормали и двум касательным
func (c *contact) solveVelocity() {
	// Нормальный импульс с накоплением и зажимом в [0, +inf)
	vn := c.relativeVelocity().Dot(c.normal)
	kn := c.effectiveMass(c.normal)
	if kn > 0 {
		target := c.restitutionBias + c.positionBias
		lambda := -(vn - target) / kn

		old := c.normalImpulse
		c.normalImpulse = maxf(old+lambda, 0)
		c.applyImpulse(c.normal.Mul(c.normalImpulse - old))
	}

	// Трение Кулона: касательные импульсы зажаты конусом трения
	maxFriction := c.friction * c.normalImpulse
	for i, tangent := range c.tangents {
		vt := c.relativeVelocity().Dot(tangent)
		kt := c.effectiveMass(tangent)
		if kt <= 0 {
			continue
		}
		lambda := -vt / kt

		old := c.tangentImpulse[i]
		c.tangentImpulse[i] = clampf(old+lambda, -maxFriction, maxFriction)
		c.applyImpulse(tangent.Mul(c.tangentImpulse[i] - old))
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
