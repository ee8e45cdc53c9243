package container

import (
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-koin/framework/property"
)

// PropertyResolver is the key/value store behind GetProperty and SetProperty.
type PropertyResolver interface {
	GetProperty(key string) (any, bool)
	SetProperty(key string, value any)
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for declaration and resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProperties replaces the default in-memory property store.
func WithProperties(props PropertyResolver) Option {
	return func(c *Container) {
		if props != nil {
			c.properties = props
		}
	}
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the bean context: it owns the bean registry, the per-scope
// instance caches and the property store, and resolves requests against them.
//
// It is safe for concurrent use. Registry and cache mutations are serialized
// by a single mutex that is never held while a factory runs.
type Container struct {
	mu sync.Mutex

	registry  *registry
	instances *instanceStore

	decorators map[reflect.Type][]Decorator
	extendGen  map[reflect.Type]uint64
	hooks      []ResolvedHook
	tags       map[string][]Query

	// goroutine ID → *resolution currently running on it
	inflight sync.Map

	properties PropertyResolver
	logger     *zap.Logger
}

// New creates a container holding only the root scope.
func New(opts ...Option) *Container {
	c := &Container{
		registry:   newRegistry(),
		instances:  newInstanceStore(),
		decorators: make(map[reflect.Type][]Decorator),
		extendGen:  make(map[reflect.Type]uint64),
		tags:       make(map[string][]Query),
		properties: property.NewStore(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Declaration ───────────────────────────────────────────────────────────────

// Declare registers def, replacing any definition with the same key and
// dropping the instance cached for it. The target scope must exist.
//
//	// Koin: declare(definition, scope)
//	err := c.Declare(container.BeanDefinition{
//	    Type:    reflect.TypeOf(&Repo{}),
//	    Scope:   container.RootScope(),
//	    Factory: func(r container.Resolver) (any, error) { return &Repo{}, nil },
//	})
func (c *Container) Declare(def BeanDefinition) error {
	if err := def.validate(); err != nil {
		return err
	}
	d := &def

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.instances.hasScope(d.Scope) {
		return &ScopeNotFoundError{Scope: d.Scope.String()}
	}
	c.instances.deleteInstance(d.key(), d.Scope)
	if old := c.registry.declare(d); old != nil && old.key() != d.key() {
		c.instances.deleteInstance(old.key(), old.Scope)
	}
	c.logger.Debug("bean declared", zap.Stringer("bean", d))
	return nil
}

// DeclareScope creates the scope owned by owner if it does not exist yet and
// returns it. A nil owner names the root scope, which always exists.
//
//	// Koin: declareScope(MainActivity::class)
func (c *Container) DeclareScope(owner reflect.Type) Scope {
	scope := ScopeOf(owner)
	c.mu.Lock()
	created := c.instances.createScope(scope)
	c.mu.Unlock()
	if created {
		c.logger.Debug("scope declared", zap.Stringer("scope", scope))
	}
	return scope
}

// HasScope reports whether scope has been declared.
func (c *Container) HasScope(scope Scope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instances.hasScope(scope)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve resolves q. Called from inside a factory on the same goroutine, it
// joins the resolution in progress, so the cycle guard sees the request even
// when the factory captured the container instead of its Resolver.
// Prefer the generic Get.
func (c *Container) Resolve(q Query) (any, error) {
	id := goid()
	if inFlight, ok := c.inflight.Load(id); ok {
		return inFlight.(*resolution).Resolve(q)
	}
	r := &resolution{c: c}
	c.inflight.Store(id, r)
	defer c.inflight.Delete(id)
	return r.Resolve(q)
}

// lookup finds the definition a query refers to.
func (c *Container) lookup(q Query) (*BeanDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case q.Name != "":
		return c.registry.searchByName(q.Name)
	case q.Scope != nil:
		if !c.instances.hasScope(*q.Scope) {
			return nil, &ScopeNotFoundError{Scope: q.Scope.String()}
		}
		return c.registry.searchIn(q.Type, *q.Scope)
	default:
		return c.registry.searchAll(q.Type)
	}
}

// ── Release ───────────────────────────────────────────────────────────────────

// Release discards the cached instances of every given scope. Definitions are
// kept, so the next resolution runs the factories again. Nothing is cleared
// unless every scope exists.
//
//	// Koin: release(MainActivity::class)
func (c *Container) Release(scopes ...Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, scope := range scopes {
		if !c.instances.hasScope(scope) {
			return &ScopeNotFoundError{Scope: scope.String()}
		}
	}
	for _, scope := range scopes {
		n := c.instances.clear(scope)
		c.logger.Debug("scope released", zap.Stringer("scope", scope), zap.Int("instances", n))
	}
	return nil
}

// ReleaseInstances releases the scopes owned by the runtime type of each object.
//
//	// Koin: release(this) from inside an Activity
//	c.ReleaseInstances(activity)
func (c *Container) ReleaseInstances(objs ...any) error {
	scopes := make([]Scope, 0, len(objs))
	for _, obj := range objs {
		t := reflect.TypeOf(obj)
		if t == nil {
			return &ScopeNotFoundError{Scope: "<nil>"}
		}
		scopes = append(scopes, ScopeOf(t))
	}
	return c.Release(scopes...)
}

// ── Properties ────────────────────────────────────────────────────────────────

// SetProperty stores a property value.
func (c *Container) SetProperty(key string, value any) {
	c.properties.SetProperty(key, value)
}

// Property returns a raw property value; ok is false when key is unset.
func (c *Container) Property(key string) (any, bool) {
	return c.properties.GetProperty(key)
}

// Properties returns the property store backing the container.
func (c *Container) Properties() PropertyResolver { return c.properties }

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.logger }

// ── Introspection ─────────────────────────────────────────────────────────────

// Definitions returns a snapshot of every declared bean.
func (c *Container) Definitions() []DefinitionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	defs := c.registry.definitions()
	out := make([]DefinitionInfo, 0, len(defs))
	for _, def := range defs {
		_, cached := c.instances.lookup(def)
		out = append(out, DefinitionInfo{
			Type:      def.Type.String(),
			Name:      def.Name,
			Scope:     def.Scope.String(),
			Transient: def.Transient,
			Cached:    cached,
		})
	}
	return out
}

// Scopes returns a snapshot of every declared scope and its cache size.
func (c *Container) Scopes() []ScopeInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instances.snapshot()
}

// DeclaredScopes returns every declared scope, root included, ordered by ID.
func (c *Container) DeclaredScopes() []Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Scope, 0, len(c.instances.scopes))
	for scope := range c.instances.scopes {
		out = append(out, scope)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// LookupScope finds a declared scope by its ID, or by its String form
// ("root" or the owner type name) when exactly one scope carries it.
// Unknown names yield a ScopeNotFoundError, short names shared by owner
// types from different packages an AmbiguousScopeError.
func (c *Container) LookupScope(name string) (Scope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matches []Scope
	for scope := range c.instances.scopes {
		if scope.ID() == name {
			return scope, nil
		}
		if scope.String() == name {
			matches = append(matches, scope)
		}
	}
	switch len(matches) {
	case 0:
		return Scope{}, &ScopeNotFoundError{Scope: name}
	case 1:
		return matches[0], nil
	}
	ids := make([]string, 0, len(matches))
	for _, scope := range matches {
		ids = append(ids, scope.ID())
	}
	sort.Strings(ids)
	return Scope{}, &AmbiguousScopeError{Name: name, IDs: ids}
}
