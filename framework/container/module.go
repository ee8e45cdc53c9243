package container

import (
	"fmt"
	"reflect"
)

// ── Module interface ──────────────────────────────────────────────────────────

// Module groups related bean declarations.
//
// Register declares beans and scopes. Boot runs after every module has been
// registered, so it is safe to resolve beans from any module there.
//
//	type DataModule struct{ container.BaseModule }
//
//	func (m *DataModule) Register(c *container.Container) error {
//	    return container.Provide(c, func(r container.Resolver) (*Repository, error) {
//	        return NewRepository(container.MustGet[*sql.DB](r)), nil
//	    })
//	}
type Module interface {
	// Register declares the module's beans. Do not resolve beans here.
	Register(c *Container) error

	// Boot is called once all modules are registered.
	Boot(c *Container) error
}

// BaseModule is an embeddable no-op Boot.
type BaseModule struct{}

func (BaseModule) Boot(_ *Container) error { return nil }

// ModuleFunc adapts a plain declaration function to a Module.
//
//	reg.Register(container.ModuleFunc(func(c *container.Container) error {
//	    return container.ProvideValue(c, cfg)
//	}))
type ModuleFunc func(c *Container) error

func (f ModuleFunc) Register(c *Container) error { return f(c) }
func (f ModuleFunc) Boot(_ *Container) error     { return nil }

// ── ModuleRegistry ────────────────────────────────────────────────────────────

// ModuleRegistry registers modules into a container and boots them in
// registration order.
type ModuleRegistry struct {
	c          *Container
	modules    []Module
	registered map[Module]bool
	booted     bool
}

// NewModuleRegistry creates a registry bound to c.
func NewModuleRegistry(c *Container) *ModuleRegistry {
	return &ModuleRegistry{
		c:          c,
		registered: make(map[Module]bool),
	}
}

// Register calls m.Register. Registering the same pointer module twice is a
// no-op; value modules such as ModuleFunc are registered every time. Once
// the registry has booted, new modules are booted immediately.
func (r *ModuleRegistry) Register(m Module) error {
	dedupe := reflect.TypeOf(m).Kind() == reflect.Ptr
	if dedupe && r.registered[m] {
		return nil
	}
	if err := m.Register(r.c); err != nil {
		return fmt.Errorf("container: register module %T: %w", m, err)
	}
	if dedupe {
		r.registered[m] = true
	}
	r.modules = append(r.modules, m)

	if r.booted {
		if err := m.Boot(r.c); err != nil {
			return fmt.Errorf("container: boot module %T: %w", m, err)
		}
	}
	return nil
}

// Boot boots every registered module once, stopping at the first error.
func (r *ModuleRegistry) Boot() error {
	if r.booted {
		return nil
	}
	for _, m := range r.modules {
		if err := m.Boot(r.c); err != nil {
			return fmt.Errorf("container: boot module %T: %w", m, err)
		}
	}
	r.booted = true
	return nil
}

// Booted returns true if Boot has completed.
func (r *ModuleRegistry) Booted() bool { return r.booted }

// Modules returns registered modules in registration order.
func (r *ModuleRegistry) Modules() []Module { return r.modules }
