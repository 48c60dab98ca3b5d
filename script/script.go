// Package script supplies ecs.System[T] callbacks backed by a compiled
// Tengo script instead of a native Go closure: a script is probed once
// to see which lifecycle functions it defines, then compiled once more
// with a small dispatch footer keyed on a __phase global, and every call
// after that just clones the compiled bytecode and re-runs it with
// fresh globals.
//
// This is an external collaborator: ecs.RegisterSystem never knows or
// cares whether a System[T]'s callbacks are Go closures or Tengo-backed.
package script

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/MicroSDA/ECS/ecs"
)

const dispatchFooter = `
if __phase == "on_create" && __has_on_create {
	__component = on_create(__component)
} else if __phase == "on_update" && __has_on_update {
	__component = on_update(__component)
} else if __phase == "on_destroy" && __has_on_destroy {
	__component = on_destroy(__component)
}
`

// Codec converts a component value to and from the plain-value shape
// (map[string]any, ints, strings, ...) that Tengo can marshal across the
// script boundary.
type Codec[T any] struct {
	Encode func(*T) map[string]any
	Decode func(map[string]any) T
}

// Runtime is a compiled Tengo script exposing up to three optional
// top-level functions: on_create, on_update and on_destroy.
type Runtime struct {
	compiled *tengo.Compiled
	has      map[string]bool
}

// Compile probes src once (compiling and running it to see which
// lifecycle functions it defines), then compiles it once more with the
// dispatch footer. src may define any subset of on_create, on_update,
// on_destroy; an undefined function is a documented no-op for that phase.
func Compile(src string) (*Runtime, error) {
	probe := tengo.NewScript([]byte(src))
	probe.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	probeCompiled, err := probe.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}
	if err := probeCompiled.Run(); err != nil {
		return nil, fmt.Errorf("script: probe run: %w", err)
	}

	has := map[string]bool{
		"on_create":  probeCompiled.IsDefined("on_create"),
		"on_update":  probeCompiled.IsDefined("on_update"),
		"on_destroy": probeCompiled.IsDefined("on_destroy"),
	}

	// The footer names all three functions, so declare the missing ones as
	// undefined placeholders; the __has_* guards keep them from being called.
	stubs := "\n"
	for _, name := range []string{"on_create", "on_update", "on_destroy"} {
		if !has[name] {
			stubs += name + " := undefined\n"
		}
	}
	full := tengo.NewScript([]byte(src + stubs + dispatchFooter))
	full.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := full.Add("__phase", ""); err != nil {
		return nil, err
	}
	if err := full.Add("__component", map[string]any{}); err != nil {
		return nil, err
	}
	if err := full.Add("__has_on_create", has["on_create"]); err != nil {
		return nil, err
	}
	if err := full.Add("__has_on_update", has["on_update"]); err != nil {
		return nil, err
	}
	if err := full.Add("__has_on_destroy", has["on_destroy"]); err != nil {
		return nil, err
	}

	compiled, err := full.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile dispatch: %w", err)
	}
	return &Runtime{compiled: compiled, has: has}, nil
}

func (rt *Runtime) call(phase string, in map[string]any) (map[string]any, error) {
	run := rt.compiled.Clone()
	if err := run.Set("__phase", phase); err != nil {
		return nil, fmt.Errorf("script: set __phase: %w", err)
	}
	if err := run.Set("__component", in); err != nil {
		return nil, fmt.Errorf("script: set __component: %w", err)
	}
	if err := run.Run(); err != nil {
		return nil, fmt.Errorf("script: run %s: %w", phase, err)
	}
	out, ok := run.Get("__component").Value().(map[string]any)
	if !ok {
		return in, nil
	}
	return out, nil
}

// System builds an ecs.System[T] whose OnCreate/OnUpdate/OnDestroy encode
// the affected value, invoke the matching Tengo function (skipped
// entirely if the script never defined it) and decode the result back in
// place. A Tengo runtime error inside a callback has no recoverable
// channel here either: it panics, matching a native Go callback that
// panics.
func System[T any](rt *Runtime, codec Codec[T]) ecs.System[T] {
	invoke := func(phase string, v *T) {
		if !rt.has[phase] {
			return
		}
		out, err := rt.call(phase, codec.Encode(v))
		if err != nil {
			panic(fmt.Sprintf("script: %s: %v", phase, err))
		}
		*v = codec.Decode(out)
	}
	return ecs.System[T]{
		OnCreate:  func(v *T) { invoke("on_create", v) },
		OnUpdate:  func(v *T) { invoke("on_update", v) },
		OnDestroy: func(v *T) { invoke("on_destroy", v) },
	}
}
