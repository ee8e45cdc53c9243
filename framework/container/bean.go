package container

import (
	"fmt"
	"reflect"
)

// Factory builds a bean instance. The Resolver passed in belongs to the
// resolution in progress, so dependencies fetched through it are checked
// against the same cycle guard as the bean being built.
//
//	func(r container.Resolver) (any, error) {
//	    db, err := container.Get[*sql.DB](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &UserRepository{DB: db}, nil
//	}
type Factory func(r Resolver) (any, error)

// BeanDefinition binds a factory to a target type inside a scope.
// Named definitions are always root scoped and looked up by name only.
//
// A Transient definition is never cached: every resolution runs the factory.
type BeanDefinition struct {
	Type      reflect.Type
	Name      string
	Scope     Scope
	Factory   Factory
	Transient bool
}

// beanKey identifies a cached instance within a scope.
type beanKey struct {
	typ  reflect.Type
	name string
}

func (d *BeanDefinition) key() beanKey {
	return beanKey{typ: d.Type, name: d.Name}
}

func (d *BeanDefinition) validate() error {
	if d.Type == nil {
		return fmt.Errorf("%w: missing target type", ErrInvalidDefinition)
	}
	if d.Factory == nil {
		return fmt.Errorf("%w for %s", ErrNilFactory, d.Type)
	}
	if d.Name != "" && !d.Scope.IsRoot() {
		return fmt.Errorf("%w: named bean %q must be root scoped, got %s",
			ErrInvalidDefinition, d.Name, d.Scope)
	}
	return nil
}

func (d *BeanDefinition) String() string {
	if d.Name != "" {
		return fmt.Sprintf("%s(%q)@%s", d.Type, d.Name, d.Scope)
	}
	return fmt.Sprintf("%s@%s", d.Type, d.Scope)
}

// DefinitionInfo is a read-only snapshot of a declared bean.
type DefinitionInfo struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Scope     string `json:"scope"`
	Transient bool   `json:"transient,omitempty"`
	Cached    bool   `json:"cached"`
}

// ScopeInfo is a read-only snapshot of a declared scope. ID is the
// package-qualified scope name accepted by LookupScope.
type ScopeInfo struct {
	Scope     string `json:"scope"`
	ID        string `json:"id"`
	Instances int    `json:"instances"`
}
