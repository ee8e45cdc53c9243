package container

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Tag files queries under a named group, in order. The beans are resolved
// lazily by Tagged.
//
//	c.Tag("checks", container.Query{Type: container.TypeOf[*DBCheck]()})
func (c *Container) Tag(tag string, queries ...Query) error {
	for _, q := range queries {
		if q.Type == nil {
			return fmt.Errorf("%w in tag %q", ErrInvalidQuery, tag)
		}
	}
	c.mu.Lock()
	c.tags[tag] = append(c.tags[tag], queries...)
	c.mu.Unlock()

	c.logger.Debug("beans tagged", zap.String("tag", tag), zap.Int("count", len(queries)))
	return nil
}

// Tagged resolves every bean filed under tag, in tagging order. An unknown
// tag yields an empty slice. The first failing resolution aborts the call.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.Lock()
	queries := append([]Query(nil), c.tags[tag]...)
	c.mu.Unlock()

	out := make([]any, 0, len(queries))
	for _, q := range queries {
		inst, err := c.Resolve(q)
		if err != nil {
			return nil, fmt.Errorf("container: tag %q: %w", tag, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// Tags returns the declared tag names, sorted.
func (c *Container) Tags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.tags))
	for tag := range c.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// TagBean files the bean Get[T](c, opts...) would return under tag.
//
//	container.TagBean[*DBCheck](c, "checks")
//	container.TagBean[Check](c, "checks", container.Named("cache"))
func TagBean[T any](c *Container, tag string, opts ...QueryOption) error {
	q := Query{Type: TypeOf[T]()}
	for _, opt := range opts {
		opt(&q)
	}
	return c.Tag(tag, q)
}

// GetTagged resolves the beans filed under tag as T.
//
//	checks, err := container.GetTagged[Check](c, "checks")
func GetTagged[T any](c *Container, tag string) ([]T, error) {
	insts, err := c.Tagged(tag)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(insts))
	for _, inst := range insts {
		typed, ok := inst.(T)
		if !ok {
			return nil, &TypeMismatchError{Expected: TypeOf[T]().String(), Got: fmt.Sprintf("%T", inst)}
		}
		out = append(out, typed)
	}
	return out, nil
}
