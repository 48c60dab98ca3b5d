// Package blueprint builds entities from YAML-defined templates: a
// template names a set of components, each a raw YAML block, decoded
// lazily per component type only when that type has been Register'd
// with a Loader.
//
// This is an external collaborator, not part of ecs's core: it does file
// I/O and it is the only place in this module that imports gopkg.in/yaml.v3.
package blueprint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MicroSDA/ECS/ecs"
)

// Template is the YAML shape of one entity blueprint: a name and a map of
// component-kind -> raw YAML block, decoded on demand by a Builder.
type Template struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

// Builder decodes one component kind's raw YAML block into a concrete
// value and attaches it to an entity being spawned.
type Builder func(r *ecs.Registry, e ecs.Entity, raw any) error

// Loader holds named templates and the component builders that know how
// to spawn them.
type Loader struct {
	templates map[string]Template
	builders  map[string]Builder
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{
		templates: make(map[string]Template),
		builders:  make(map[string]Builder),
	}
}

// Register associates a component kind name (as it appears under a
// template's `components:` map) with the builder that decodes and
// attaches it.
func (l *Loader) Register(kind string, build Builder) {
	l.builders[kind] = build
}

// RegisterComponent is a generic convenience over Register: decode is
// handed the raw YAML block as yaml.v3 unmarshaled it (DecodeComponentSpec
// is a ready-made decode) and returns the concrete component value to
// attach via ecs.Add.
func RegisterComponent[T any](l *Loader, kind string, decode func(raw any) (T, error)) {
	l.Register(kind, func(r *ecs.Registry, e ecs.Entity, raw any) error {
		v, err := decode(raw)
		if err != nil {
			return fmt.Errorf("blueprint: decode %s: %w", kind, err)
		}
		ecs.Add(r, e, v)
		return nil
	})
}

// DecodeComponentSpec re-marshals a raw `any` (as produced by yaml.v3 when
// unmarshaling into map[string]any) into a concrete component type T,
// keeping per-component YAML shapes out of the generic Template type.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var component T
	if raw == nil {
		return component, nil
	}
	block, err := yaml.Marshal(raw)
	if err != nil {
		return component, fmt.Errorf("blueprint: re-marshal component block: %w", err)
	}
	if err := yaml.Unmarshal(block, &component); err != nil {
		return component, fmt.Errorf("blueprint: decode component block: %w", err)
	}
	return component, nil
}

// Load parses a template from a YAML file and stores it under its own
// Name field.
func (l *Loader) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("blueprint: read %s: %w", path, err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("blueprint: unmarshal %s: %w", path, err)
	}
	if t.Name == "" {
		return fmt.Errorf("blueprint: %s has no name", path)
	}
	l.templates[t.Name] = t
	return nil
}

// Spawn creates a new entity in r and attaches every component named in
// the template's Components map, in map order (unspecified — YAML maps
// carry no ordering guarantee). A component kind with no registered
// Builder is skipped.
func (l *Loader) Spawn(r *ecs.Registry, name string) (ecs.Entity, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return r.Null(), fmt.Errorf("blueprint: unknown template %q", name)
	}
	e := r.CreateEntity()
	for kind, raw := range tmpl.Components {
		build, ok := l.builders[kind]
		if !ok {
			continue
		}
		if err := build(r, e, raw); err != nil {
			r.DestroyEntity(e)
			return r.Null(), fmt.Errorf("blueprint: spawn %q: %w", name, err)
		}
	}
	return e, nil
}
