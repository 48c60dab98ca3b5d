package ecs

import "github.com/MicroSDA/ECS/ecs/internal/assert"

// slot is one row of the entity table. nextFree is only meaningful while
// !alive; gen already holds the generation that will be advertised the
// next time this slot is allocated, incremented and wrapped to the
// table's generation width at destroy time so it stays comparable
// against a masked, packed Entity's generation bits.
type slot struct {
	gen      uint32
	alive    bool
	nextFree int32
	parent   Entity
	children []Entity
}

// entityTable owns the slot array and the free-list. Rather than
// threading the free-list through a recycled identifier's own index
// field, it keeps the free-list in a dedicated nextFree field per slot —
// same state machine and recycling guarantees, without overloading a
// packed Entity as an internal linked-list pointer.
type entityTable struct {
	layout   layout
	slots    []slot
	freeHead int32 // -1 when every slot is live
	live     int
	onCreate func(Entity)
}

func newEntityTable(l layout) entityTable {
	return entityTable{layout: l, freeHead: -1}
}

func (t *entityTable) create() Entity {
	var idx int32
	if t.freeHead == -1 {
		idx = int32(len(t.slots))
		t.slots = append(t.slots, slot{gen: 0, alive: true, nextFree: -1, parent: t.layout.null})
	} else {
		idx = t.freeHead
		s := &t.slots[idx]
		t.freeHead = s.nextFree
		s.alive = true
		s.parent = t.layout.null
		s.children = nil
	}
	t.live++
	return t.layout.pack(uint64(idx), uint64(t.slots[idx].gen))
}

func (t *entityTable) valid(e Entity) bool {
	if e == t.layout.null {
		return false
	}
	idx := t.layout.index(e)
	if int(idx) >= len(t.slots) {
		return false
	}
	s := &t.slots[idx]
	return s.alive && s.gen == t.layout.generation(e)
}

// destroy unlinks e from its parent (if any) and detaches its children
// (leaving them as roots), then frees the slot. It does not touch
// component stores; the Registry handles that cascade before calling
// this. Requires valid(e).
func (t *entityTable) destroy(e Entity) {
	idx := t.layout.index(e)
	s := &t.slots[idx]

	if s.parent != t.layout.null {
		t.detachChild(s.parent, e)
	}
	for _, c := range s.children {
		cs := &t.slots[t.layout.index(c)]
		cs.parent = t.layout.null
	}

	s.alive = false
	s.gen = uint32((uint64(s.gen) + 1) & t.layout.genMask)
	s.parent = t.layout.null
	s.children = nil
	s.nextFree = t.freeHead
	t.freeHead = int32(idx)
	t.live--
}

func (t *entityTable) entityAt(idx uint32) Entity {
	return t.layout.pack(uint64(idx), uint64(t.slots[idx].gen))
}

func (t *entityTable) parentOf(e Entity) Entity {
	return t.slots[t.layout.index(e)].parent
}

func (t *entityTable) childrenOf(e Entity) []Entity {
	return t.slots[t.layout.index(e)].children
}

func (t *entityTable) isChildOf(e, ancestor Entity) bool {
	cur := t.parentOf(e)
	for cur != t.layout.null {
		if cur == ancestor {
			return true
		}
		cur = t.parentOf(cur)
	}
	return false
}

// addChild links child under parent. Requires both live, parent != child,
// child not already parented, and no cycle.
func (t *entityTable) addChild(parent, child Entity) {
	assert.That(t.valid(parent) && t.valid(child), "ecs: addChild requires two live entities")
	assert.That(parent != child, "ecs: entity %s cannot be its own child", child)
	assert.That(t.parentOf(child) == t.layout.null, "ecs: entity %s already has a parent", child)
	assert.That(!t.isChildOf(parent, child), "ecs: addChild(%s, %s) would create a cycle", parent, child)

	pIdx := t.layout.index(parent)
	t.slots[pIdx].children = append(t.slots[pIdx].children, child)
	t.slots[t.layout.index(child)].parent = parent
}

// detachChild removes child from parent's children slice without
// touching child.parent — used internally by destroy, which clears
// parent itself right afterward.
func (t *entityTable) detachChild(parent, child Entity) {
	pIdx := t.layout.index(parent)
	kids := t.slots[pIdx].children
	for i, c := range kids {
		if c == child {
			t.slots[pIdx].children = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

func (t *entityTable) removeChild(parent, child Entity) {
	assert.That(t.parentOf(child) == parent, "ecs: %s is not a child of %s", child, parent)
	t.detachChild(parent, child)
	t.slots[t.layout.index(child)].parent = t.layout.null
}

// setParent reparents e under p, unlinking from any prior parent first.
// p == null (the table's null sentinel) simply unlinks e.
func (t *entityTable) setParent(e, p Entity) {
	if prev := t.parentOf(e); prev != t.layout.null {
		t.detachChild(prev, e)
		t.slots[t.layout.index(e)].parent = t.layout.null
	}
	if p != t.layout.null {
		t.addChild(p, e)
	}
}
