package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vk/cdf2fhir/internal/ctxlog"
)

// Registry maps module names to the modules compiled into the binary.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// New creates a Registry holding mods.
func New(mods ...Module) *Registry {
	r := &Registry{modules: make(map[string]Module, len(mods))}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register adds m under its name. Registering a name twice is a programmer
// error and panics.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := m.Name()
	if _, exists := r.modules[name]; exists {
		panic(fmt.Sprintf("module with name '%s' already registered", name))
	}
	r.modules[name] = m
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.modules))
}

// Resolve flattens and compiles the callables of module m.
func Resolve(m Module) ([]*Func, error) {
	callables, err := Callables(m.Exports())
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", m.Name(), err)
	}
	funcs := make([]*Func, 0, len(callables))
	for _, c := range callables {
		f, err := Compile(c)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", m.Name(), err)
		}
		funcs = append(funcs, f)
	}
	return funcs, nil
}

// Validate resolves every registered module and reports all failures at once.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error
	for _, name := range r.Names() {
		m, _ := r.Lookup(name)
		funcs, err := Resolve(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("Module validated.", "module", name, "kind", m.Exports().Kind().String(), "callables", len(funcs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}
	return nil
}
