package chart

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// TypeDoughnut is the built-in ring chart type.
const TypeDoughnut = "doughnut"

var (
	// ErrUnknownType is returned when a chart is created for a type that has
	// no controller.
	ErrUnknownType = errors.New("chart: unknown chart type")

	// ErrNilSurface is returned when a chart is created without a surface.
	ErrNilSurface = errors.New("chart: nil surface")
)

// ControllerFactory builds the drawing controller for one chart instance.
type ControllerFactory func() Drawable

// Registry maps chart type names to their default options and controllers.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	defaults    map[string]Options
	controllers map[string]ControllerFactory

	// hidePlugins makes the registry accept controller registrations
	// without ever exposing them, like a host too old for custom types.
	hidePlugins bool
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*Registry)

// WithoutControllerPlugins returns a registry that silently ignores
// RegisterController for anything but the built-in types.
func WithoutControllerPlugins() RegistryOption {
	return func(r *Registry) {
		r.hidePlugins = true
	}
}

// NewRegistry creates a registry holding only the built-in doughnut type.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		defaults:    make(map[string]Options),
		controllers: make(map[string]ControllerFactory),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.defaults[TypeDoughnut] = DoughnutDefaults()
	r.controllers[TypeDoughnut] = func() Drawable { return DoughnutController{} }
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// SetDefaults stores the default options for a chart type.
func (r *Registry) SetDefaults(typ string, o Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[typ] = o
}

// Defaults returns the default options for a chart type.
func (r *Registry) Defaults(typ string) (Options, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.defaults[typ]
	return o, ok
}

// RegisterController associates a controller factory with a chart type.
// Registering an existing type replaces its factory.
func (r *Registry) RegisterController(typ string, f ControllerFactory) error {
	if typ == "" {
		return fmt.Errorf("chart type cannot be empty")
	}
	if f == nil {
		return fmt.Errorf("controller for %q cannot be nil", typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hidePlugins {
		return nil
	}
	r.controllers[typ] = f
	return nil
}

// Controller returns the factory registered for typ.
func (r *Registry) Controller(typ string) (ControllerFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.controllers[typ]
	return f, ok
}

// Types returns the chart types that have a controller, sorted by name.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.controllers))
	for t := range r.controllers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
