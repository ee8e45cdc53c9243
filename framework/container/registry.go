package container

import (
	"reflect"
	"sort"
)

// registry maps (type, scope) and name to bean definitions.
// It is not safe for concurrent use; Container serializes access.
type registry struct {
	// type → scope → unnamed definition
	unnamed map[reflect.Type]map[Scope]*BeanDefinition

	// name → definition (always root scoped)
	named map[string]*BeanDefinition
}

func newRegistry() *registry {
	return &registry{
		unnamed: make(map[reflect.Type]map[Scope]*BeanDefinition),
		named:   make(map[string]*BeanDefinition),
	}
}

// declare inserts def, returning the definition it replaced (or nil).
// Cached instances are left alone; invalidation is the caller's job.
func (r *registry) declare(def *BeanDefinition) *BeanDefinition {
	if def.Name != "" {
		old := r.named[def.Name]
		r.named[def.Name] = def
		return old
	}
	byScope, ok := r.unnamed[def.Type]
	if !ok {
		byScope = make(map[Scope]*BeanDefinition)
		r.unnamed[def.Type] = byScope
	}
	old := byScope[def.Scope]
	byScope[def.Scope] = def
	return old
}

func (r *registry) searchByName(name string) (*BeanDefinition, error) {
	def, ok := r.named[name]
	if !ok {
		return nil, &BeanNotFoundError{Name: name}
	}
	return def, nil
}

// searchAll returns the single unnamed definition for t across every scope.
func (r *registry) searchAll(t reflect.Type) (*BeanDefinition, error) {
	byScope := r.unnamed[t]
	switch len(byScope) {
	case 0:
		return nil, &BeanNotFoundError{Type: t.String()}
	case 1:
		for _, def := range byScope {
			return def, nil
		}
	}
	scopes := make([]string, 0, len(byScope))
	for s := range byScope {
		scopes = append(scopes, s.String())
	}
	sort.Strings(scopes)
	return nil, &AmbiguousBeanError{Type: t.String(), Scopes: scopes}
}

func (r *registry) searchIn(t reflect.Type, scope Scope) (*BeanDefinition, error) {
	def, ok := r.unnamed[t][scope]
	if !ok {
		return nil, &BeanNotFoundError{Type: t.String(), Scope: scope.String()}
	}
	return def, nil
}

// current reports whether def is still the registered definition for its key.
func (r *registry) current(def *BeanDefinition) bool {
	if def.Name != "" {
		return r.named[def.Name] == def
	}
	return r.unnamed[def.Type][def.Scope] == def
}

// definitionsOf returns every definition producing t, named or not.
func (r *registry) definitionsOf(t reflect.Type) []*BeanDefinition {
	var out []*BeanDefinition
	for _, def := range r.unnamed[t] {
		out = append(out, def)
	}
	for _, def := range r.named {
		if def.Type == t {
			out = append(out, def)
		}
	}
	return out
}

// definitions returns every definition ordered by type, name and scope.
func (r *registry) definitions() []*BeanDefinition {
	out := make([]*BeanDefinition, 0, len(r.named)+len(r.unnamed))
	for _, byScope := range r.unnamed {
		for _, def := range byScope {
			out = append(out, def)
		}
	}
	for _, def := range r.named {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ta, tb := a.Type.String(), b.Type.String(); ta != tb {
			return ta < tb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Scope.String() < b.Scope.String()
	})
	return out
}
