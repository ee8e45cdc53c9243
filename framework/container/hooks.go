package container

import (
	"reflect"

	"go.uber.org/zap"
)

// ── Decorators ────────────────────────────────────────────────────────────────

// Decorator wraps or replaces a freshly built instance. It runs once per
// construction, after the factory and before the instance is cached.
type Decorator func(inst any, r Resolver) (any, error)

// extend registers a decorator for every definition of t and drops the
// instances already cached for t, so the next resolution is decorated.
func (c *Container) extend(t reflect.Type, d Decorator) {
	c.mu.Lock()
	c.decorators[t] = append(c.decorators[t], d)
	c.extendGen[t]++
	dropped := 0
	for _, def := range c.registry.definitionsOf(t) {
		if _, ok := c.instances.lookup(def); ok {
			c.instances.deleteInstance(def.key(), def.Scope)
			dropped++
		}
	}
	c.mu.Unlock()

	c.logger.Debug("bean extended", zap.Stringer("type", t), zap.Int("dropped", dropped))
}

// ── Resolution hooks ──────────────────────────────────────────────────────────

// ResolvedHook observes every instance the container builds. Cache hits do
// not fire it.
type ResolvedHook func(def BeanDefinition, inst any)

// AfterResolving registers a hook fired after each bean construction, on the
// goroutine that resolved it and outside the container lock.
//
//	c.AfterResolving(func(def container.BeanDefinition, inst any) {
//	    logger.Debug("bean built", zap.Stringer("type", def.Type))
//	})
func (c *Container) AfterResolving(hook ResolvedHook) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

func fireResolved(hooks []ResolvedHook, def *BeanDefinition, inst any) {
	for _, hook := range hooks {
		hook(*def, inst)
	}
}
