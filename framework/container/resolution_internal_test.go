package container

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct{}

type node struct{ next *node }

func typeFrame[T any](name string) frame {
	return frame{typ: TypeOf[T](), name: name}
}

// ── resolution stack ──────────────────────────────────────────────────────────

func TestResolution_PushPopBalanced(t *testing.T) {
	r := &resolution{c: New()}
	a, b := typeFrame[leaf](""), typeFrame[*node]("")

	require.Nil(t, r.push(a))
	require.Nil(t, r.push(b))
	assert.Equal(t, 2, r.depth())

	r.pop(b)
	r.pop(a)
	assert.Equal(t, 0, r.depth())
}

func TestResolution_PushRejectsDuplicate(t *testing.T) {
	r := &resolution{c: New()}
	a, b := typeFrame[leaf](""), typeFrame[*node]("")
	require.Nil(t, r.push(a))
	require.Nil(t, r.push(b))

	err := r.push(a)
	require.NotNil(t, err)
	assert.Equal(t, []string{"container.leaf", "*container.node", "container.leaf"}, err.Path)
	assert.Equal(t, 2, r.depth(), "failed push must not grow the stack")
}

func TestResolution_SameTypeUnderOtherNameIsACycle(t *testing.T) {
	r := &resolution{c: New()}
	require.Nil(t, r.push(typeFrame[leaf]("x")))

	err := r.push(typeFrame[leaf]("y"))
	require.NotNil(t, err)
	assert.Equal(t, "container.leaf", err.Type)
	assert.Equal(t, []string{"container.leaf(x)", "container.leaf(y)"}, err.Path)
	assert.Equal(t, 1, r.depth())
}

func TestResolution_SameTypeInOtherScopeIsACycle(t *testing.T) {
	r := &resolution{c: New()}
	require.Nil(t, r.push(typeFrame[leaf]("")))

	err := r.push(newFrame(Query{Type: TypeOf[leaf](), Scope: &Scope{}}))
	require.NotNil(t, err)
	assert.Equal(t, []string{"container.leaf", "container.leaf@root"}, err.Path)
}

func TestResolution_PopMismatchPanics(t *testing.T) {
	r := &resolution{c: New()}
	require.Nil(t, r.push(typeFrame[leaf]("")))

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		var violation *InvariantViolationError
		require.True(t, errors.As(rec.(error), &violation))
		assert.Equal(t, "*container.node", violation.Expected)
		assert.Equal(t, "container.leaf", violation.Got)
	}()
	r.pop(frame{typ: reflect.TypeOf(&node{})})
}

func TestResolution_PopEmptyPanics(t *testing.T) {
	r := &resolution{c: New()}
	assert.Panics(t, func() { r.pop(typeFrame[leaf]("")) })
}

func TestResolution_StackEmptyAfterFailures(t *testing.T) {
	c := New()
	require.NoError(t, Provide(c, func(r Resolver) (*node, error) {
		n, err := Get[*node](r)
		return &node{next: n}, err
	}))
	require.NoError(t, Provide(c, func(r Resolver) (leaf, error) {
		return leaf{}, errors.New("broken")
	}))

	r := &resolution{c: c}

	_, err := r.Resolve(Query{Type: TypeOf[*node]()})
	var cycle *CyclicDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, 0, r.depth())

	_, err = r.Resolve(Query{Type: TypeOf[leaf]()})
	require.Error(t, err)
	assert.Equal(t, 0, r.depth())

	_, err = r.Resolve(Query{Type: TypeOf[string]()})
	var notFound *BeanNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 0, r.depth())
}

func TestResolution_StackEmptyAfterFactoryPanic(t *testing.T) {
	c := New()
	require.NoError(t, Provide(c, func(Resolver) (*node, error) {
		panic("factory exploded")
	}))
	r := &resolution{c: c}

	assert.PanicsWithValue(t, "factory exploded", func() {
		_, _ = r.Resolve(Query{Type: TypeOf[*node]()})
	})
	assert.Equal(t, 0, r.depth())
}

func TestResolution_QueryWithoutType(t *testing.T) {
	_, err := New().Resolve(Query{})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

// ── registry ──────────────────────────────────────────────────────────────────

func newDef[T any](name string, scope Scope) *BeanDefinition {
	return &BeanDefinition{
		Type:    TypeOf[T](),
		Name:    name,
		Scope:   scope,
		Factory: func(Resolver) (any, error) { return *new(T), nil },
	}
}

func TestRegistry_DeclareReplaces(t *testing.T) {
	reg := newRegistry()
	first := newDef[leaf]("", RootScope())
	second := newDef[leaf]("", RootScope())

	assert.Nil(t, reg.declare(first))
	assert.Same(t, first, reg.declare(second))

	got, err := reg.searchAll(TypeOf[leaf]())
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.False(t, reg.current(first))
	assert.True(t, reg.current(second))
}

func TestRegistry_SearchByName(t *testing.T) {
	reg := newRegistry()
	def := newDef[leaf]("main", RootScope())
	reg.declare(def)

	got, err := reg.searchByName("main")
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = reg.searchByName("other")
	var notFound *BeanNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "other", notFound.Name)

	_, err = reg.searchAll(TypeOf[leaf]())
	assert.ErrorAs(t, err, &notFound, "named beans are invisible to type lookups")
}

func TestRegistry_SearchAllAmbiguous(t *testing.T) {
	reg := newRegistry()
	scope := ScopeFor[*node]()
	reg.declare(newDef[leaf]("", RootScope()))
	reg.declare(newDef[leaf]("", scope))

	_, err := reg.searchAll(TypeOf[leaf]())
	var ambiguous *AmbiguousBeanError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, []string{"*container.node", "root"}, ambiguous.Scopes)

	got, err := reg.searchIn(TypeOf[leaf](), scope)
	require.NoError(t, err)
	assert.Equal(t, scope, got.Scope)
}

// ── instance store ────────────────────────────────────────────────────────────

func TestInstanceStore_ScopesAndClear(t *testing.T) {
	store := newInstanceStore()
	assert.True(t, store.hasScope(RootScope()))
	assert.False(t, store.createScope(RootScope()))

	scope := ScopeFor[*node]()
	assert.True(t, store.createScope(scope))
	assert.False(t, store.createScope(scope))

	def := newDef[leaf]("", scope)
	store.store(def, leaf{})
	_, ok := store.lookup(def)
	assert.True(t, ok)

	gen := store.generation(scope)
	assert.Equal(t, 1, store.clear(scope))
	assert.Equal(t, gen+1, store.generation(scope))
	assert.Equal(t, uint64(0), store.generation(RootScope()))
	_, ok = store.lookup(def)
	assert.False(t, ok)
	assert.True(t, store.hasScope(scope), "clearing keeps the scope")

	store.deleteInstance(def.key(), scope)
	store.deleteInstance(def.key(), ScopeFor[leaf]())
}

func TestContainer_ResolveJoinsInFlightResolution(t *testing.T) {
	c := New()
	var depth int
	require.NoError(t, Provide(c, func(Resolver) (leaf, error) {
		inFlight, ok := c.inflight.Load(goid())
		require.True(t, ok)
		depth = inFlight.(*resolution).depth()
		return leaf{}, nil
	}))
	require.NoError(t, Provide(c, func(Resolver) (*node, error) {
		// Resolved through the container, not the Resolver argument.
		_, err := Get[leaf](c)
		return &node{}, err
	}))

	_, err := Get[*node](c)
	require.NoError(t, err)
	assert.Equal(t, 2, depth, "leaf is pushed on the stack *node started")

	_, ok := c.inflight.Load(goid())
	assert.False(t, ok, "resolution is dropped once the top-level call returns")
}

func TestGoid_DiffersAcrossGoroutines(t *testing.T) {
	here := goid()
	there := make(chan int64)
	go func() { there <- goid() }()
	assert.NotEqual(t, here, <-there)
	assert.Positive(t, here)
}
