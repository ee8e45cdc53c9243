package container

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"
)

// instanceStore caches constructed beans per scope.
// It is not safe for concurrent use; Container serializes access.
type instanceStore struct {
	scopes map[Scope]map[beanKey]any

	// scope → number of times it was cleared
	generations map[Scope]uint64
}

func newInstanceStore() *instanceStore {
	s := &instanceStore{
		scopes:      make(map[Scope]map[beanKey]any),
		generations: make(map[Scope]uint64),
	}
	s.createScope(RootScope())
	return s
}

// createScope registers an empty cache for scope. It reports false when the
// scope already existed, leaving its cache untouched.
func (s *instanceStore) createScope(scope Scope) bool {
	if _, ok := s.scopes[scope]; ok {
		return false
	}
	s.scopes[scope] = make(map[beanKey]any)
	return true
}

func (s *instanceStore) hasScope(scope Scope) bool {
	_, ok := s.scopes[scope]
	return ok
}

func (s *instanceStore) lookup(def *BeanDefinition) (any, bool) {
	inst, ok := s.scopes[def.Scope][def.key()]
	return inst, ok
}

func (s *instanceStore) store(def *BeanDefinition, inst any) {
	s.scopes[def.Scope][def.key()] = inst
}

// deleteInstance drops a cached instance; absent entries are a no-op.
func (s *instanceStore) deleteInstance(key beanKey, scope Scope) {
	if cache, ok := s.scopes[scope]; ok {
		delete(cache, key)
	}
}

// clear discards every cached instance of scope and returns how many were
// dropped. It starts a new generation of the scope, so instances built from
// an earlier generation are no longer cached into it.
func (s *instanceStore) clear(scope Scope) int {
	cache := s.scopes[scope]
	n := len(cache)
	s.scopes[scope] = make(map[beanKey]any)
	s.generations[scope]++
	return n
}

func (s *instanceStore) generation(scope Scope) uint64 {
	return s.generations[scope]
}

func (s *instanceStore) snapshot() []ScopeInfo {
	out := make([]ScopeInfo, 0, len(s.scopes))
	for scope, cache := range s.scopes {
		out = append(out, ScopeInfo{Scope: scope.String(), ID: scope.ID(), Instances: len(cache)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// buildState is what resolveInstance captures under the lock before it runs
// a factory, and re-checks once the factory returns.
type buildState struct {
	scopeGen   uint64
	extendGen  uint64
	decorators []Decorator
	hooks      []ResolvedHook
}

func (c *Container) captureBuild(def *BeanDefinition) buildState {
	return buildState{
		scopeGen:   c.instances.generation(def.Scope),
		extendGen:  c.extendGen[def.Type],
		decorators: c.decorators[def.Type],
		hooks:      c.hooks,
	}
}

// resolveInstance returns the cached instance for def or builds one.
//
// The lock is released while the factory runs so that the factory can
// resolve its own dependencies. Once it returns, the result is only cached
// if def is still the registered definition, its scope has not been released
// and no decorator was added for its type in the meantime. If another caller
// cached an instance first, that one wins.
func (c *Container) resolveInstance(def *BeanDefinition, r Resolver) (any, error) {
	c.mu.Lock()
	if !def.Transient {
		if inst, ok := c.instances.lookup(def); ok {
			c.mu.Unlock()
			c.logger.Debug("bean cache hit", zap.Stringer("bean", def))
			return inst, nil
		}
	}
	state := c.captureBuild(def)
	c.mu.Unlock()

	c.logger.Debug("bean cache miss", zap.Stringer("bean", def))
	inst, err := build(def, state.decorators, r)
	if err != nil {
		return nil, err
	}
	if def.Transient {
		fireResolved(state.hooks, def, inst)
		return inst, nil
	}

	c.mu.Lock()
	if existing, ok := c.instances.lookup(def); ok {
		c.mu.Unlock()
		return existing, nil
	}
	switch {
	case !c.registry.current(def):
		c.logger.Debug("bean redeclared during construction", zap.Stringer("bean", def))
	case c.instances.generation(def.Scope) != state.scopeGen:
		c.logger.Debug("scope released during construction", zap.Stringer("bean", def))
	case c.extendGen[def.Type] != state.extendGen:
		c.logger.Debug("bean extended during construction", zap.Stringer("bean", def))
	default:
		c.instances.store(def, inst)
	}
	c.mu.Unlock()

	fireResolved(state.hooks, def, inst)
	return inst, nil
}

// build runs the factory and the decorators registered for def.Type.
func build(def *BeanDefinition, decorators []Decorator, r Resolver) (any, error) {
	inst, err := def.Factory(r)
	if err != nil {
		return nil, &InstantiationError{Type: def.Type.String(), Err: err}
	}
	if err := checkInstance(def, inst); err != nil {
		return nil, err
	}
	for _, decorate := range decorators {
		if inst, err = decorate(inst, r); err != nil {
			return nil, &InstantiationError{Type: def.Type.String(), Err: fmt.Errorf("decorator: %w", err)}
		}
		if err := checkInstance(def, inst); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func checkInstance(def *BeanDefinition, inst any) error {
	if isNil(inst) {
		return &InstantiationError{Type: def.Type.String(), Err: ErrNilInstance}
	}
	if got := reflect.TypeOf(inst); !got.AssignableTo(def.Type) {
		return &InstantiationError{
			Type: def.Type.String(),
			Err:  &TypeMismatchError{Expected: def.Type.String(), Got: got.String()},
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
