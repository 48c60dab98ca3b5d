package ecs

// A View joins N component stores and iterates only the entities present
// in every one of them. Construction picks a driver — the store with the
// smallest size — and iterates its dense array, skipping any index the
// other stores don't contain. If any requested component type has never
// been used on this Registry, the view is empty (a silent no-op, not an
// error).
//
// Removing the entity's driver component from inside a callback passed to
// Each is unsupported and unchecked: it corrupts the in-flight iteration
// over the driver's dense array. Removing a non-driver component, or
// adding components of any type, is safe but may or may not be observed
// by the in-flight call.

// View1 iterates every live entity carrying an A.
type View1[A any] struct {
	r  *Registry
	sa *ComponentStore[A]
}

func NewView1[A any](r *Registry) View1[A] {
	sa, ok := lookupStore[A](r)
	if !ok {
		return View1[A]{}
	}
	return View1[A]{r: r, sa: sa}
}

// Each visits every entity holding an A, in the store's dense order.
func (v View1[A]) Each(fn func(Entity, *A)) {
	if v.sa == nil {
		return
	}
	dense := v.sa.data()
	for i := 0; i < len(dense); i++ {
		idx := dense[i]
		fn(v.r.table.entityAt(idx), v.sa.valuePtr(idx))
	}
}

// View2 iterates every live entity carrying both an A and a B.
type View2[A, B any] struct {
	r      *Registry
	sa     *ComponentStore[A]
	sb     *ComponentStore[B]
	driveA bool
}

func NewView2[A, B any](r *Registry) View2[A, B] {
	sa, oka := lookupStore[A](r)
	sb, okb := lookupStore[B](r)
	if !oka || !okb {
		return View2[A, B]{}
	}
	return View2[A, B]{r: r, sa: sa, sb: sb, driveA: sa.size() <= sb.size()}
}

func (v View2[A, B]) Each(fn func(Entity, *A, *B)) {
	if v.sa == nil || v.sb == nil {
		return
	}
	if v.driveA {
		dense := v.sa.data()
		for i := 0; i < len(dense); i++ {
			idx := dense[i]
			if !v.sb.contains(idx) {
				continue
			}
			fn(v.r.table.entityAt(idx), v.sa.valuePtr(idx), v.sb.valuePtr(idx))
		}
		return
	}
	dense := v.sb.data()
	for i := 0; i < len(dense); i++ {
		idx := dense[i]
		if !v.sa.contains(idx) {
			continue
		}
		fn(v.r.table.entityAt(idx), v.sa.valuePtr(idx), v.sb.valuePtr(idx))
	}
}

// View3 iterates every live entity carrying an A, a B and a C.
type View3[A, B, C any] struct {
	r      *Registry
	sa     *ComponentStore[A]
	sb     *ComponentStore[B]
	sc     *ComponentStore[C]
	driver int // 0, 1 or 2
}

func NewView3[A, B, C any](r *Registry) View3[A, B, C] {
	sa, oka := lookupStore[A](r)
	sb, okb := lookupStore[B](r)
	sc, okc := lookupStore[C](r)
	if !oka || !okb || !okc {
		return View3[A, B, C]{}
	}
	v := View3[A, B, C]{r: r, sa: sa, sb: sb, sc: sc}
	v.driver = smallest(sa.size(), sb.size(), sc.size())
	return v
}

func (v View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	if v.sa == nil || v.sb == nil || v.sc == nil {
		return
	}
	var dense []uint32
	switch v.driver {
	case 0:
		dense = v.sa.data()
	case 1:
		dense = v.sb.data()
	default:
		dense = v.sc.data()
	}
	for i := 0; i < len(dense); i++ {
		idx := dense[i]
		if !v.sa.contains(idx) || !v.sb.contains(idx) || !v.sc.contains(idx) {
			continue
		}
		fn(v.r.table.entityAt(idx), v.sa.valuePtr(idx), v.sb.valuePtr(idx), v.sc.valuePtr(idx))
	}
}

// View4 iterates every live entity carrying an A, a B, a C and a D.
type View4[A, B, C, D any] struct {
	r      *Registry
	sa     *ComponentStore[A]
	sb     *ComponentStore[B]
	sc     *ComponentStore[C]
	sd     *ComponentStore[D]
	driver int // 0..3
}

func NewView4[A, B, C, D any](r *Registry) View4[A, B, C, D] {
	sa, oka := lookupStore[A](r)
	sb, okb := lookupStore[B](r)
	sc, okc := lookupStore[C](r)
	sd, okd := lookupStore[D](r)
	if !oka || !okb || !okc || !okd {
		return View4[A, B, C, D]{}
	}
	v := View4[A, B, C, D]{r: r, sa: sa, sb: sb, sc: sc, sd: sd}
	v.driver = smallest4(sa.size(), sb.size(), sc.size(), sd.size())
	return v
}

func (v View4[A, B, C, D]) Each(fn func(Entity, *A, *B, *C, *D)) {
	if v.sa == nil || v.sb == nil || v.sc == nil || v.sd == nil {
		return
	}
	var dense []uint32
	switch v.driver {
	case 0:
		dense = v.sa.data()
	case 1:
		dense = v.sb.data()
	case 2:
		dense = v.sc.data()
	default:
		dense = v.sd.data()
	}
	for i := 0; i < len(dense); i++ {
		idx := dense[i]
		if !v.sa.contains(idx) || !v.sb.contains(idx) || !v.sc.contains(idx) || !v.sd.contains(idx) {
			continue
		}
		fn(v.r.table.entityAt(idx), v.sa.valuePtr(idx), v.sb.valuePtr(idx), v.sc.valuePtr(idx), v.sd.valuePtr(idx))
	}
}

func smallest(a, b, c int) int {
	idx, min := 0, a
	if b < min {
		idx, min = 1, b
	}
	if c < min {
		idx = 2
	}
	return idx
}

func smallest4(a, b, c, d int) int {
	idx, min := 0, a
	if b < min {
		idx, min = 1, b
	}
	if c < min {
		idx, min = 2, c
	}
	if d < min {
		idx = 3
	}
	return idx
}
