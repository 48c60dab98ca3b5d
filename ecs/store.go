package ecs

import "github.com/MicroSDA/ECS/ecs/internal/assert"

// System is a triple of lifecycle callbacks associated with a component
// type. Any of the three may be nil.
type System[T any] struct {
	OnCreate  func(*T)
	OnUpdate  func(*T)
	OnDestroy func(*T)
}

// erasedStore is what the Registry needs from any component store without
// knowing its value type: the ability to drop a value for an entity index
// during entity destruction, and enough introspection to drive a View.
type erasedStore interface {
	destroyFor(index uint32)
	contains(index uint32) bool
	size() int
	data() []uint32
	runUpdate()
}

// ComponentStore extends a SparseSet with a parallel values array, so
// values[i] is the component belonging to the entity whose index is
// packed[i]. A reference returned by Add or Get remains valid until the
// next Add/Remove on this same store.
type ComponentStore[T any] struct {
	set    SparseSet
	values []T
	system *System[T]
}

func (c *ComponentStore[T]) contains(index uint32) bool { return c.set.Contains(index) }
func (c *ComponentStore[T]) size() int                  { return c.set.Len() }
func (c *ComponentStore[T]) data() []uint32              { return c.set.Data() }

func (c *ComponentStore[T]) valuePtr(index uint32) *T {
	return &c.values[c.set.Position(index)]
}

// add constructs T in place and returns a stable pointer to it. Requires
// !contains(index).
func (c *ComponentStore[T]) add(index uint32, value T) *T {
	assert.That(!c.set.Contains(index), "ecs: entity index %d already has this component", index)
	c.set.Push(index)
	c.values = append(c.values, value)
	return &c.values[len(c.values)-1]
}

// remove drops the component for index via swap-with-last, keeping
// values and packed aligned. Requires contains(index).
func (c *ComponentStore[T]) remove(index uint32) {
	assert.That(c.set.Contains(index), "ecs: entity index %d has no such component", index)
	pos := c.set.Position(index)
	last := len(c.values) - 1
	c.values[pos] = c.values[last]
	c.values = c.values[:last]
	c.set.Pop(index)
}

// destroyFor is the type-erased trampoline the Registry calls during
// entity destruction: a lenient contains-then-dispatch-then-remove, never
// a precondition violation when the component is simply absent.
func (c *ComponentStore[T]) destroyFor(index uint32) {
	if !c.set.Contains(index) {
		return
	}
	if c.system != nil && c.system.OnDestroy != nil {
		c.system.OnDestroy(c.valuePtr(index))
	}
	c.remove(index)
}

// runUpdate invokes the registered OnUpdate callback, if any, once per
// live value, in dense (packed) order.
func (c *ComponentStore[T]) runUpdate() {
	if c.system == nil || c.system.OnUpdate == nil {
		return
	}
	for i := range c.values {
		c.system.OnUpdate(&c.values[i])
	}
}
