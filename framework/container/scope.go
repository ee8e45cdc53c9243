package container

import "reflect"

// Scope identifies the owner of a set of cached instances.
//
// The zero value is the root scope, which holds process-lifetime singletons
// and always exists. Every other scope is identified by an owner type and
// must be declared with DeclareScope before definitions can target it.
//
//	// Koin: declareContext(MainActivity::class) { ... }
//	c.DeclareScope(reflect.TypeOf(&MainActivity{}))
//	container.ProvideAt(c, container.ScopeFor[*MainActivity](), newPresenter)
type Scope struct {
	owner reflect.Type
}

// RootScope returns the root scope.
func RootScope() Scope { return Scope{} }

// ScopeOf returns the scope owned by t. A nil type yields the root scope.
func ScopeOf(t reflect.Type) Scope { return Scope{owner: t} }

// ScopeFor returns the scope owned by T.
func ScopeFor[T any]() Scope { return ScopeOf(TypeOf[T]()) }

// IsRoot reports whether s is the root scope.
func (s Scope) IsRoot() bool { return s.owner == nil }

// Owner returns the owner type, or nil for the root scope.
func (s Scope) Owner() reflect.Type { return s.owner }

func (s Scope) String() string {
	if s.owner == nil {
		return "root"
	}
	return s.owner.String()
}

// ID returns the package-qualified form of String. Unlike String it is
// unique per scope: two owner types sharing a package name and type name
// still differ in import path.
func (s Scope) ID() string {
	if s.owner == nil {
		return "root"
	}
	return qualifiedName(s.owner)
}

func qualifiedName(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Ptr:
		return "*" + qualifiedName(t.Elem())
	case t.Kind() == reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeOf returns the runtime type token for T. Interface types are kept as
// interfaces rather than collapsing to a nil dynamic type.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
