// Package ecs implements a data-oriented Entity-Component-System registry:
// generational entity identifiers with free-list recycling, type-erased
// per-component sparse-set storage, and lazy multi-component views. The
// package is synchronous and single-threaded by design — see the module's
// top-level documentation for the full rationale.
package ecs

import (
	"reflect"

	"github.com/MicroSDA/ECS/ecs/internal/assert"
)

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithOnEntityCreate installs a callback invoked once per CreateEntity,
// after the slot is allocated, receiving the new handle. The callback may
// itself add components to the new entity.
func WithOnEntityCreate(fn func(Entity)) Option {
	return func(r *Registry) { r.table.onCreate = fn }
}

// Registry owns every entity slot and every component store. It is the
// only mutable object in the package; Entity values are plain data.
type Registry struct {
	table  entityTable
	stores map[reflect.Type]erasedStore
	order  []reflect.Type
}

// NewRegistry creates an empty Registry using the given identifier width.
func NewRegistry(width Width, opts ...Option) *Registry {
	r := &Registry{
		table:  newEntityTable(newLayout(width)),
		stores: make(map[reflect.Type]erasedStore),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Null returns this Registry's reserved null identifier.
func (r *Registry) Null() Entity { return r.table.layout.null }

// CreateEntity allocates a new entity and returns its handle. If an
// on-create callback was configured, it runs before the handle is
// returned and may add components to it.
func (r *Registry) CreateEntity() Entity {
	e := r.table.create()
	if r.table.onCreate != nil {
		r.table.onCreate(e)
	}
	return e
}

// IsValid reports whether e refers to a currently live entity in this
// Registry.
func (r *Registry) IsValid(e Entity) bool { return r.table.valid(e) }

// EntitiesCount returns the number of currently live entities.
func (r *Registry) EntitiesCount() int { return r.table.live }

// DestroyEntity destroys e: every component store that claims to hold a
// value for e's index is asked to drop it (dispatching that type's
// OnDestroy if registered), then the slot is unlinked from any parent,
// its children are detached (left as roots), and the slot is recycled.
// Requires IsValid(e).
func (r *Registry) DestroyEntity(e Entity) {
	assert.That(r.table.valid(e), "ecs: DestroyEntity called on invalid entity %s", e)
	idx := r.table.layout.index(e)
	for _, t := range r.order {
		r.stores[t].destroyFor(idx)
	}
	r.table.destroy(e)
}

// DestroyWithChildren recursively destroys every descendant of e
// (depth-first, each child consumed from the front so the recursion is
// safe against the structural mutation it causes), then destroys e.
func (r *Registry) DestroyWithChildren(e Entity) {
	assert.That(r.table.valid(e), "ecs: DestroyWithChildren called on invalid entity %s", e)
	for len(r.table.childrenOf(e)) > 0 {
		child := r.table.childrenOf(e)[0]
		r.DestroyWithChildren(child)
	}
	r.DestroyEntity(e)
}

// DestroyAll destroys every currently live entity.
func (r *Registry) DestroyAll() {
	for idx := range r.table.slots {
		s := &r.table.slots[idx]
		if s.alive {
			r.DestroyEntity(r.table.layout.pack(uint64(idx), uint64(s.gen)))
		}
	}
}

// Parent returns e's parent, or Null() if e is a root.
func (r *Registry) Parent(e Entity) Entity { return r.table.parentOf(e) }

// Children returns e's children in insertion order. The returned slice
// must not be mutated by the caller.
func (r *Registry) Children(e Entity) []Entity { return r.table.childrenOf(e) }

// IsChildOf reports whether ancestor is any ancestor of e (a strict
// partial order — irreflexive and transitive).
func (r *Registry) IsChildOf(e, ancestor Entity) bool { return r.table.isChildOf(e, ancestor) }

// AddChild appends child under parent. Fails (panics) if parent == child,
// child already has a parent, or child is already an ancestor of parent.
func (r *Registry) AddChild(parent, child Entity) { r.table.addChild(parent, child) }

// RemoveChild unlinks child from parent, clearing child's parent.
func (r *Registry) RemoveChild(parent, child Entity) { r.table.removeChild(parent, child) }

// SetParent reparents e under p, first unlinking from any existing
// parent. p == Null() simply unlinks e, leaving it a root.
func (r *Registry) SetParent(e, p Entity) { r.table.setParent(e, p) }

func typeKey[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// storeFor returns T's ComponentStore, creating it (and appending T to
// this Registry's store order) on first use. Stores are keyed by
// reflect.Type inside this Registry instance; there is no package-level
// type counter.
func storeFor[T any](r *Registry) *ComponentStore[T] {
	key := typeKey[T]()
	if s, ok := r.stores[key]; ok {
		return s.(*ComponentStore[T])
	}
	cs := &ComponentStore[T]{}
	r.stores[key] = cs
	r.order = append(r.order, key)
	return cs
}

// lookupStore returns T's store without creating it. ok is false if T has
// never been added to this Registry.
func lookupStore[T any](r *Registry) (*ComponentStore[T], bool) {
	s, ok := r.stores[typeKey[T]()]
	if !ok {
		return nil, false
	}
	return s.(*ComponentStore[T]), true
}

// Add attaches a T component to e, constructing it from value, and
// returns a pointer stable until the next Add/Remove of a T anywhere in
// this Registry. If a System[T] is registered, its OnCreate runs before
// Add returns. Requires IsValid(e) and !Has[T](r, e).
func Add[T any](r *Registry, e Entity, value T) *T {
	assert.That(r.table.valid(e), "ecs: Add called on invalid entity %s", e)
	cs := storeFor[T](r)
	ptr := cs.add(r.table.layout.index(e), value)
	if cs.system != nil && cs.system.OnCreate != nil {
		cs.system.OnCreate(ptr)
	}
	return ptr
}

// Remove detaches e's T component. If a System[T] is registered, its
// OnDestroy runs before the value is actually removed. Requires
// Has[T](r, e).
func Remove[T any](r *Registry, e Entity) {
	assert.That(r.table.valid(e), "ecs: Remove called on invalid entity %s", e)
	cs, ok := lookupStore[T](r)
	idx := r.table.layout.index(e)
	assert.That(ok && cs.contains(idx), "ecs: entity %s has no component of this type", e)
	if cs.system != nil && cs.system.OnDestroy != nil {
		cs.system.OnDestroy(cs.valuePtr(idx))
	}
	cs.remove(idx)
}

// Get returns a pointer to e's T component. Requires Has[T](r, e).
func Get[T any](r *Registry, e Entity) *T {
	cs, ok := lookupStore[T](r)
	idx := r.table.layout.index(e)
	assert.That(ok && cs.contains(idx), "ecs: entity %s has no component of this type", e)
	return cs.valuePtr(idx)
}

// Has reports whether e currently carries a T component.
func Has[T any](r *Registry, e Entity) bool {
	cs, ok := lookupStore[T](r)
	if !ok {
		return false
	}
	return cs.contains(r.table.layout.index(e))
}

// RegisterSystem installs lifecycle callbacks for T. It may be called
// before or after any T component exists.
func RegisterSystem[T any](r *Registry, sys System[T]) {
	storeFor[T](r).system = &sys
}

// RunUpdate invokes T's registered OnUpdate over every live T value, in
// dense storage order. A no-op if no T component has ever been added or
// no System[T] was registered.
func RunUpdate[T any](r *Registry) {
	cs, ok := lookupStore[T](r)
	if !ok {
		return
	}
	cs.runUpdate()
}
