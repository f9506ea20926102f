package plugin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

var (
	ErrDuplicateName          = errors.New("plugin: name already registered")
	ErrIncompatibleAPIVersion = errors.New("plugin: incompatible API version")
	ErrUnresolvedDependency   = errors.New("plugin: unresolved dependency")
	ErrCircularDependency     = errors.New("plugin: circular dependency")
	ErrAlreadyInitialized     = errors.New("plugin: registry already initialized")
	ErrNotInitialized         = errors.New("plugin: registry not initialized")
)

// Registry holds registered plugins and runs their lifecycle in dependency
// order. Registration happens during engine setup; after InitializeAll the
// set is frozen.
type Registry struct {
	plugins     map[string]Plugin
	loadOrder   []string
	initialized bool
	engineAPI   *semver.Version
}

func NewRegistry() *Registry {
	return &Registry{
		plugins:   make(map[string]Plugin),
		engineAPI: semver.MustParse(APIVersion),
	}
}

// Register adds a plugin. Fails on duplicate names, incompatible API
// versions, or after initialization.
func (r *Registry) Register(p Plugin) error {
	if r.initialized {
		return ErrAlreadyInitialized
	}
	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	required, err := semver.NewVersion(p.APIVersion())
	if err != nil {
		return fmt.Errorf("%w: plugin %q requires unparseable version %q: %v",
			ErrIncompatibleAPIVersion, name, p.APIVersion(), err)
	}
	if required.Major() != r.engineAPI.Major() || required.Minor() > r.engineAPI.Minor() {
		return fmt.Errorf("%w: plugin %q requires %s, engine provides %s",
			ErrIncompatibleAPIVersion, name, required, r.engineAPI)
	}
	r.plugins[name] = p
	return nil
}

// InitializeAll resolves the dependency DAG, topologically orders it, and
// initializes every plugin in that order.
func (r *Registry) InitializeAll(ctx *Context) error {
	if r.initialized {
		return ErrAlreadyInitialized
	}

	deps := make(map[string][]string, len(r.plugins))
	for name, p := range r.plugins {
		ds := p.Dependencies()
		for _, d := range ds {
			if _, ok := r.plugins[d]; !ok {
				return fmt.Errorf("%w: plugin %q depends on %q which is not registered",
					ErrUnresolvedDependency, name, d)
			}
		}
		deps[name] = ds
	}

	order, err := topoSort(deps)
	if err != nil {
		return err
	}

	for _, name := range order {
		if err := r.plugins[name].Initialize(ctx); err != nil {
			return fmt.Errorf("plugin: initializing %q: %w", name, err)
		}
	}

	r.loadOrder = order
	r.initialized = true
	return nil
}

// UpdateAll runs each plugin's Update in load order.
func (r *Registry) UpdateAll(ctx *Context) error {
	if !r.initialized {
		return ErrNotInitialized
	}
	for _, name := range r.loadOrder {
		if err := r.plugins[name].Update(ctx); err != nil {
			return fmt.Errorf("plugin: updating %q: %w", name, err)
		}
	}
	return nil
}

// ShutdownAll runs each plugin's Shutdown in reverse load order.
func (r *Registry) ShutdownAll() error {
	if !r.initialized {
		return nil
	}
	for i := len(r.loadOrder) - 1; i >= 0; i-- {
		name := r.loadOrder[i]
		if err := r.plugins[name].Shutdown(); err != nil {
			return fmt.Errorf("plugin: shutting down %q: %w", name, err)
		}
	}
	r.initialized = false
	return nil
}

func (r *Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

func (r *Registry) Count() int { return len(r.plugins) }

func (r *Registry) Initialized() bool { return r.initialized }

// LoadOrder returns the initialization order, empty before InitializeAll.
func (r *Registry) LoadOrder() []string {
	out := make([]string, len(r.loadOrder))
	copy(out, r.loadOrder)
	return out
}

// topoSort is Kahn's algorithm over the name->dependencies map. Names are
// processed in sorted order so the result is deterministic.
func topoSort(deps map[string][]string) ([]string, error) {
	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string, len(deps))
	for name, ds := range deps {
		indegree[name] += 0
		for _, d := range ds {
			indegree[name]++
			dependents[d] = append(dependents[d], name)
		}
	}

	ready := make([]string, 0, len(deps))
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(deps))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(deps) {
		remaining := make([]string, 0)
		for name, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("%w: involving %v", ErrCircularDependency, remaining)
	}
	return order, nil
}
