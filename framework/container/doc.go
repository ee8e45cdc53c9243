// Package container provides a Koin-style bean container for Go.
//
// # Overview
//
// A Container maps bean definitions (a factory plus the type it produces,
// an optional name and an owning scope) to lazily built instances. Each
// instance is built once per scope and cached until its scope is released or
// its definition is replaced.
//
// Go cannot recover a type from a generic parameter alone at runtime, so
// every definition and every request carries an explicit reflect.Type token.
// The generic helpers (Provide, Get, ...) derive that token from T.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register modules: reg.Register(&DataModule{})
//  3. Boot: reg.Boot()        (safe to resolve everything after this)
//  4. Resolve beans, release scopes as their owners go away
//
// # Declaring
//
//	// Koin: provide { Repository(get()) }
//	container.Provide(c, func(r container.Resolver) (*Repository, error) {
//	    return &Repository{DS: container.MustGet[DataSource](r)}, nil
//	})
//
//	// Named binding, always root scoped
//	container.ProvideNamed(c, "remote", newRemoteDataSource)
//
//	// Scoped binding; the scope must be declared first
//	scope := container.DeclareScopeFor[*Activity](c)
//	container.ProvideAt(c, scope, newPresenter)
//
// Declaring a bean that already exists replaces its definition and drops
// the cached instance, so the next Get runs the new factory.
//
// # Resolving
//
//	repo, err := container.Get[*Repository](c)
//	ds, err := container.Get[DataSource](c, container.Named("remote"))
//	p, err := container.Get[*Presenter](c, container.InScope(scope))
//
// An unnamed request matches the single unnamed definition for the type
// across all scopes. When several scopes declare one, the request fails with
// an AmbiguousBeanError and InScope must be used.
//
// # Cycles
//
// Each top-level Get owns a resolution stack. Factories receive that
// resolution as their Resolver, so dependencies they fetch are pushed on the
// same stack. Requesting a bean that is already on the stack fails with a
// CyclicDependencyError before any factory runs:
//
//	container: cyclic dependency for *app.A: *app.A -> *app.B -> *app.A
//
// # Releasing
//
//	c.Release(scope)             // by scope
//	c.ReleaseInstances(activity) // by the runtime type of the owner
//
// Releasing keeps the definitions; only cached instances are dropped.
//
// # Modules
//
//	type DataModule struct{ container.BaseModule }
//
//	func (m *DataModule) Register(c *container.Container) error {
//	    return container.ProvideValue(c, &Config{DSN: "postgres://"})
//	}
//
//	reg := container.NewModuleRegistry(c)
//	reg.Register(&DataModule{})
//	reg.Boot()
//
// # Properties
//
//	c.SetProperty("server.url", "http://localhost")
//	url, ok, err := container.GetProperty[string](c, "server.url")
package container
