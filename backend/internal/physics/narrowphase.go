package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// contact - точка соприкосновения двух тел с нормалью от a к b
type contact struct {
	a, b   *RigidBody
	point  mgl32.Vec3
	normal mgl32.Vec3
	depth  float32

	// Накопленные импульсы текущего шага
	normalImpulse  float32
	tangentImpulse [2]float32
	tangents       [2]mgl32.Vec3

	restitution float32
	friction    float32
	// Целевая скорость отскока, фиксируется до итераций решателя
	restitutionBias float32
	// Скорость позиционной коррекции Baumgarte
	positionBias float32
}

// collideBodies генерирует контакты между двумя телами по их капсульным
// прокси. Возвращает nil, если тела не пересекаются.
func collideBodies(a, b *RigidBody) []*contact {
	var contacts []*contact

	for _, pa := range a.worldProxies() {
		for _, pb := range b.worldProxies() {
			if c := collideProxies(a, b, pa, pb); c != nil {
				contacts = append(contacts, c)
			}
		}
	}
	return contacts
}

// collideProxies строит контакт между двумя капсульными прокси:
// ближайшие точки отрезков, пересечение по сумме радиусов
func collideProxies(a, b *RigidBody, pa, pb CapsuleProxy) *contact {
	ca, cb := closestPointsSegments(pa.A, pa.B, pb.A, pb.B)

	delta := cb.Sub(ca)
	dist := delta.Len()
	depth := pa.Radius + pb.Radius - dist
	if depth <= 0 {
		return nil
	}

	var normal mgl32.Vec3
	if dist > 1e-6 {
		normal = delta.Mul(1 / dist)
	} else {
		// Центры совпали, выталкиваем вверх
		normal = mgl32.Vec3{0, 1, 0}
	}

	point := ca.Add(normal.Mul(pa.Radius - depth/2))

	return &contact{
		a:           a,
		b:           b,
		point:       point,
		normal:      normal,
		depth:       depth,
		restitution: maxf(a.Collider.Restitution, b.Collider.Restitution),
		friction:    (a.Collider.Friction + b.Collider.Friction) / 2,
	}
}

// collideGround генерирует контакты тела с верхней гранью земли.
// Земля считается горизонтальной полуплоскостью y = top.
func collideGround(body, ground *RigidBody) []*contact {
	cuboid, ok := ground.Collider.Shape.(Cuboid)
	if !ok {
		return nil
	}
	top := ground.Position.Y() + cuboid.HalfExtents.Y()

	var contacts []*contact
	for _, p := range body.worldProxies() {
		for _, end := range []mgl32.Vec3{p.A, p.B} {
			depth := top - (end.Y() - p.Radius)
			if depth <= 0 {
				continue
			}
			contacts = append(contacts, &contact{
				// Нормаль направлена от земли к телу, поэтому земля - a
				a:           ground,
				b:           body,
				point:       mgl32.Vec3{end.X(), end.Y() - p.Radius + depth/2, end.Z()},
				normal:      mgl32.Vec3{0, 1, 0},
				depth:       depth,
				restitution: maxf(body.Collider.Restitution, ground.Collider.Restitution),
				friction:    (body.Collider.Friction + ground.Collider.Friction) / 2,
			})
		}
	}
	return contacts
}

// closestPointsSegments возвращает ближайшие точки двух отрезков.
// Стандартный алгоритм с параметризацией s,t и зажимом в [0,1].
func closestPointsSegments(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)

	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32

	const eps = 1e-8

	switch {
	case a <= eps && e <= eps:
		// Оба отрезка вырождены в точки
		return p1, p2
	case a <= eps:
		s = 0
		t = clampf(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = clampf(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = clampf((b*f-c*e)/denom, 0, 1)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clampf(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clampf((b-c)/a, 0, 1)
			}
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
