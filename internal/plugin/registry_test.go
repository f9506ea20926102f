package plugin

import (
	"errors"
	"testing"

	"github.com/san-kum/physim/internal/ecs"
)

type testPlugin struct {
	Base
	name    string
	api     string
	deps    []string
	initLog *[]string
	downLog *[]string
}

func (p *testPlugin) Name() string    { return p.name }
func (p *testPlugin) Version() string { return "1.0.0" }

func (p *testPlugin) APIVersion() string {
	if p.api != "" {
		return p.api
	}
	return APIVersion
}

func (p *testPlugin) Dependencies() []string { return p.deps }

func (p *testPlugin) Initialize(*Context) error {
	if p.initLog != nil {
		*p.initLog = append(*p.initLog, p.name)
	}
	return nil
}

func (p *testPlugin) Shutdown() error {
	if p.downLog != nil {
		*p.downLog = append(*p.downLog, p.name)
	}
	return nil
}

func testContext() *Context {
	return NewContext(ecs.NewWorld(), "verlet", 0.01, 1)
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&testPlugin{name: "a"}); err != nil {
		t.Fatal(err)
	}
	err := r.Register(&testPlugin{name: "a"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestRegisterVersionGating(t *testing.T) {
	cases := []struct {
		api string
		ok  bool
	}{
		{"0.1.0", true},
		{"0.1.9", true},  // patch ignored
		{"0.0.0", true},  // lower minor is fine
		{"0.2.0", false}, // newer minor than the engine
		{"1.1.0", false}, // major mismatch
		{"bogus", false}, // unparseable
	}
	for _, tc := range cases {
		r := NewRegistry()
		err := r.Register(&testPlugin{name: "p", api: tc.api})
		if tc.ok && err != nil {
			t.Errorf("api %q should register: %v", tc.api, err)
		}
		if !tc.ok && !errors.Is(err, ErrIncompatibleAPIVersion) {
			t.Errorf("api %q should fail with ErrIncompatibleAPIVersion, got %v", tc.api, err)
		}
	}
}

func TestInitializeDependencyOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	// A depends on B and C, which both depend on D.
	r.Register(&testPlugin{name: "a", deps: []string{"b", "c"}, initLog: &log})
	r.Register(&testPlugin{name: "b", deps: []string{"d"}, initLog: &log})
	r.Register(&testPlugin{name: "c", deps: []string{"d"}, initLog: &log})
	r.Register(&testPlugin{name: "d", initLog: &log})

	if err := r.InitializeAll(testContext()); err != nil {
		t.Fatal(err)
	}

	pos := map[string]int{}
	for i, name := range log {
		pos[name] = i
	}
	if !(pos["d"] < pos["b"] && pos["d"] < pos["c"] && pos["b"] < pos["a"] && pos["c"] < pos["a"]) {
		t.Errorf("initialization order %v violates dependencies", log)
	}
	if got := r.LoadOrder(); len(got) != 4 {
		t.Errorf("load order should list all plugins, got %v", got)
	}
}

func TestInitializeCircularDependency(t *testing.T) {
	r := NewRegistry()
	r.Register(&testPlugin{name: "a", deps: []string{"b"}})
	r.Register(&testPlugin{name: "b", deps: []string{"a"}})

	err := r.InitializeAll(testContext())
	if !errors.Is(err, ErrCircularDependency) {
		t.Errorf("expected ErrCircularDependency, got %v", err)
	}
}

func TestInitializeUnresolvedDependency(t *testing.T) {
	r := NewRegistry()
	r.Register(&testPlugin{name: "a", deps: []string{"ghost"}})

	err := r.InitializeAll(testContext())
	if !errors.Is(err, ErrUnresolvedDependency) {
		t.Errorf("expected ErrUnresolvedDependency, got %v", err)
	}
}

func TestShutdownReverseOrder(t *testing.T) {
	var initLog, downLog []string
	r := NewRegistry()
	r.Register(&testPlugin{name: "a", deps: []string{"b"}, initLog: &initLog, downLog: &downLog})
	r.Register(&testPlugin{name: "b", initLog: &initLog, downLog: &downLog})

	if err := r.InitializeAll(testContext()); err != nil {
		t.Fatal(err)
	}
	if err := r.ShutdownAll(); err != nil {
		t.Fatal(err)
	}

	if len(downLog) != 2 || downLog[0] != initLog[1] || downLog[1] != initLog[0] {
		t.Errorf("shutdown %v should reverse initialization %v", downLog, initLog)
	}
}

func TestRegisterAfterInitialize(t *testing.T) {
	r := NewRegistry()
	r.Register(&testPlugin{name: "a"})
	if err := r.InitializeAll(testContext()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&testPlugin{name: "b"}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestUpdateRequiresInitialization(t *testing.T) {
	r := NewRegistry()
	r.Register(&testPlugin{name: "a"})
	if err := r.UpdateAll(testContext()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	p := &testPlugin{name: "a"}
	r.Register(p)
	got, ok := r.Get("a")
	if !ok || got.Name() != "a" {
		t.Error("Get should find registered plugin")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get should miss unknown names")
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 plugin, got %d", r.Count())
	}
}
