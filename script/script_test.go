package script

import (
	"testing"

	"github.com/MicroSDA/ECS/ecs"
)

type counter struct {
	Count int
}

func counterCodec() Codec[counter] {
	return Codec[counter]{
		Encode: func(c *counter) map[string]any {
			return map[string]any{"count": int64(c.Count)}
		},
		Decode: func(m map[string]any) counter {
			v, _ := m["count"].(int64)
			return counter{Count: int(v)}
		},
	}
}

func TestRuntimeDispatchesDefinedPhasesOnly(t *testing.T) {
	rt, err := Compile(`
on_create := func(c) {
	c["count"] = c["count"] + 1
	return c
}

on_update := func(c) {
	c["count"] = c["count"] * 2
	return c
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !rt.has["on_create"] || !rt.has["on_update"] {
		t.Fatalf("expected on_create and on_update to be detected as defined")
	}
	if rt.has["on_destroy"] {
		t.Fatalf("did not expect on_destroy to be detected")
	}

	sys := System(rt, counterCodec())

	c := counter{Count: 1}
	sys.OnCreate(&c)
	if c.Count != 2 {
		t.Fatalf("after OnCreate, count = %d, want 2", c.Count)
	}
	sys.OnUpdate(&c)
	if c.Count != 4 {
		t.Fatalf("after OnUpdate, count = %d, want 4", c.Count)
	}
	sys.OnDestroy(&c)
	if c.Count != 4 {
		t.Fatalf("OnDestroy should be a no-op when on_destroy is undefined, got %d", c.Count)
	}
}

func TestRuntimeAllThreePhases(t *testing.T) {
	rt, err := Compile(`
on_create := func(c) {
	c["log"] = c["log"] + "create,"
	return c
}
on_update := func(c) {
	c["log"] = c["log"] + "update,"
	return c
}
on_destroy := func(c) {
	c["log"] = c["log"] + "destroy,"
	return c
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	type tagged struct{ Log string }
	codec := Codec[tagged]{
		Encode: func(v *tagged) map[string]any { return map[string]any{"log": v.Log} },
		Decode: func(m map[string]any) tagged { return tagged{Log: m["log"].(string)} },
	}
	sys := System(rt, codec)

	v := tagged{}
	sys.OnCreate(&v)
	sys.OnUpdate(&v)
	sys.OnDestroy(&v)
	if v.Log != "create,update,destroy," {
		t.Fatalf("log = %q, want %q", v.Log, "create,update,destroy,")
	}
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	if _, err := Compile(`on_create := func(c) { return`); err == nil {
		t.Fatalf("expected a compile error for malformed script")
	}
}

func TestSystemPanicsOnScriptRuntimeError(t *testing.T) {
	rt, err := Compile(`
on_create := func(c) {
	return c["count"] + "not a number"
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	sys := System(rt, counterCodec())

	defer func() {
		if recover() == nil {
			t.Fatalf("expected OnCreate to panic when the script errors at runtime")
		}
	}()
	c := counter{}
	sys.OnCreate(&c)
}

// RegisterSystem smoke test: a Tengo-backed System[T] plugs into the
// registry exactly like a native Go one.
func TestScriptSystemRegistersOnRegistry(t *testing.T) {
	rt, err := Compile(`
on_create := func(c) {
	c["count"] = 1
	return c
}
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	r := ecs.NewRegistry(ecs.Width32)
	ecs.RegisterSystem(r, System(rt, counterCodec()))

	e := r.CreateEntity()
	ecs.Add(r, e, counter{})
	if got := ecs.Get[counter](r, e).Count; got != 1 {
		t.Fatalf("count after add = %d, want 1", got)
	}
}
