package physics

// islandSet - система непересекающихся множеств по контактам:
// связанные контактами динамические тела образуют остров и
// засыпают или просыпаются только целиком
type islandSet struct {
	parent []int
}

func newIslandSet(n int) *islandSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &islandSet{parent: parent}
}

func (s *islandSet) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *islandSet) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra != rb {
		s.parent[ra] = rb
	}
}

// updateSleep обновляет таймеры сна и усыпляет/будит острова целиком.
// Тело набирает таймер, пока обе скорости ниже порогов; остров засыпает,
// когда таймер набрали все его тела.
func (w *World) updateSleep(bodies []*RigidBody, contacts []*contact, dt float32) {
	dynamic := make([]*RigidBody, 0, len(bodies))
	for _, b := range bodies {
		if b.Type == BodyDynamic {
			b.island = len(dynamic)
			dynamic = append(dynamic, b)
		}
	}
	if len(dynamic) == 0 {
		return
	}

	set := newIslandSet(len(dynamic))
	for _, c := range contacts {
		if c.a.Type == BodyDynamic && c.b.Type == BodyDynamic {
			set.union(c.a.island, c.b.island)
		}
	}

	linThr := w.cfg.SleepLinearThreshold * w.cfg.SleepLinearThreshold
	angThr := w.cfg.SleepAngularThreshold * w.cfg.SleepAngularThreshold

	for _, b := range dynamic {
		if b.LinVel.Dot(b.LinVel) < linThr && b.AngVel.Dot(b.AngVel) < angThr {
			b.sleepTimer += dt
		} else {
			b.sleepTimer = 0
		}
	}

	// Минимальный таймер по острову определяет состояние всего острова
	minTimer := make(map[int]float32)
	for _, b := range dynamic {
		root := set.find(b.island)
		t, ok := minTimer[root]
		if !ok || b.sleepTimer < t {
			minTimer[root] = b.sleepTimer
		}
	}

	for _, b := range dynamic {
		asleep := minTimer[set.find(b.island)] >= w.cfg.SleepTime
		if asleep && !b.sleeping {
			b.sleeping = true
			b.LinVel = b.LinVel.Mul(0)
			b.AngVel = b.AngVel.Mul(0)
		} else if !asleep && b.sleeping {
			b.sleeping = false
		}
	}
}
