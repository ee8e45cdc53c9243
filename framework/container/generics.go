package container

import (
	"fmt"
	"reflect"
)

// ── Resolution helpers ────────────────────────────────────────────────────────

// Get resolves T through r and checks the result's type.
//
//	// Koin: val repo: Repository = get()
//	repo, err := container.Get[*Repository](c)
//
//	// Koin: get<DataSource>("remote")
//	ds, err := container.Get[DataSource](c, container.Named("remote"))
func Get[T any](r Resolver, opts ...QueryOption) (T, error) {
	var zero T
	q := Query{Type: TypeOf[T]()}
	for _, opt := range opts {
		opt(&q)
	}
	inst, err := r.Resolve(q)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: q.Type.String(), Got: fmt.Sprintf("%T", inst)}
	}
	return typed, nil
}

// MustGet is like Get but panics on failure.
func MustGet[T any](r Resolver, opts ...QueryOption) T {
	v, err := Get[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// ── Declaration helpers ───────────────────────────────────────────────────────

// Provide declares an unnamed root-scoped bean for T.
//
//	// Koin: provide { Repository(get()) }
//	err := container.Provide(c, func(r container.Resolver) (*Repository, error) {
//	    ds, err := container.Get[DataSource](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Repository{DS: ds}, nil
//	})
func Provide[T any](c *Container, factory func(Resolver) (T, error)) error {
	return c.Declare(BeanDefinition{
		Type:    TypeOf[T](),
		Scope:   RootScope(),
		Factory: erase(factory),
	})
}

// ProvideNamed declares a root-scoped bean for T reachable only by name.
func ProvideNamed[T any](c *Container, name string, factory func(Resolver) (T, error)) error {
	if name == "" {
		return fmt.Errorf("%w: empty bean name for %s", ErrInvalidDefinition, TypeOf[T]())
	}
	return c.Declare(BeanDefinition{
		Type:    TypeOf[T](),
		Name:    name,
		Scope:   RootScope(),
		Factory: erase(factory),
	})
}

// ProvideAt declares an unnamed bean for T in an existing scope.
//
//	// Koin: provideAt({ Presenter(get()) }, MainActivity::class)
//	c.DeclareScope(reflect.TypeOf(&MainActivity{}))
//	err := container.ProvideAt(c, container.ScopeFor[*MainActivity](), newPresenter)
func ProvideAt[T any](c *Container, scope Scope, factory func(Resolver) (T, error)) error {
	return c.Declare(BeanDefinition{
		Type:    TypeOf[T](),
		Scope:   scope,
		Factory: erase(factory),
	})
}

// ProvideFactory declares an unnamed root-scoped transient bean for T: every
// resolution runs the factory and nothing is cached.
//
//	// Koin: factory { Presenter(get()) }
//	err := container.ProvideFactory(c, newPresenter)
func ProvideFactory[T any](c *Container, factory func(Resolver) (T, error)) error {
	return c.Declare(BeanDefinition{
		Type:      TypeOf[T](),
		Scope:     RootScope(),
		Factory:   erase(factory),
		Transient: true,
	})
}

// Alias makes the unnamed bean for T resolvable as I as well. The alias is
// transient and forwards to T on each resolution, so it always sees T's
// current instance in whatever scope T lives. T must implement I.
//
//	// Koin: provide { RemoteRepository() } bind Repository::class
//	container.Alias[Repository, *RemoteRepository](c)
func Alias[I, T any](c *Container) error {
	iface, target := TypeOf[I](), TypeOf[T]()
	if !target.AssignableTo(iface) {
		return &TypeMismatchError{Expected: iface.String(), Got: target.String()}
	}
	return c.Declare(BeanDefinition{
		Type:  iface,
		Scope: RootScope(),
		Factory: func(r Resolver) (any, error) {
			return r.Resolve(Query{Type: target})
		},
		Transient: true,
	})
}

// Extend registers a decorator for every bean of type T. Cached instances
// of T are dropped so the next resolution builds and decorates a fresh one.
//
//	container.Extend(c, func(l *Logger, r container.Resolver) (*Logger, error) {
//	    return l.With("component", "api"), nil
//	})
func Extend[T any](c *Container, decorate func(T, Resolver) (T, error)) error {
	if decorate == nil {
		return fmt.Errorf("%w: nil decorator for %s", ErrInvalidDefinition, TypeOf[T]())
	}
	c.extend(TypeOf[T](), func(inst any, r Resolver) (any, error) {
		typed, ok := inst.(T)
		if !ok {
			return nil, &TypeMismatchError{Expected: TypeOf[T]().String(), Got: fmt.Sprintf("%T", inst)}
		}
		v, err := decorate(typed, r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	return nil
}

// ProvideValue declares a pre-built root-scoped instance of T.
func ProvideValue[T any](c *Container, value T) error {
	return Provide(c, func(Resolver) (T, error) { return value, nil })
}

// DeclareScopeFor creates the scope owned by T.
func DeclareScopeFor[T any](c *Container) Scope {
	return c.DeclareScope(TypeOf[T]())
}

func erase[T any](factory func(Resolver) (T, error)) Factory {
	if factory == nil {
		return nil
	}
	return func(r Resolver) (any, error) {
		v, err := factory(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// ── Property helpers ──────────────────────────────────────────────────────────

// GetProperty returns the property stored under key as T.
// ok is false when the key is unset; a value of another type yields a
// TypeMismatchError.
//
//	// Koin: val url: String? = getProperty("server.url")
//	url, ok, err := container.GetProperty[string](c, "server.url")
func GetProperty[T any](c *Container, key string) (val T, ok bool, err error) {
	raw, ok := c.Property(key)
	if !ok {
		return val, false, nil
	}
	typed, isT := raw.(T)
	if !isT {
		got := "<nil>"
		if t := reflect.TypeOf(raw); t != nil {
			got = t.String()
		}
		return val, true, &TypeMismatchError{Expected: TypeOf[T]().String(), Got: got}
	}
	return typed, true, nil
}
