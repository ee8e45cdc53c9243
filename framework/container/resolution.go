package container

import (
	"errors"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidQuery is returned when a query carries no target type.
var ErrInvalidQuery = errors.New("container: query without target type")

// Resolver turns a query into a bean instance.
//
// *Container is a Resolver that joins the resolution running on the calling
// goroutine, or starts a fresh one. Factories receive the Resolver of the
// resolution that invoked them; it is valid for use on the factory's
// goroutine only.
type Resolver interface {
	Resolve(q Query) (any, error)
}

// Query describes the bean being requested.
type Query struct {
	Type  reflect.Type
	Name  string
	Scope *Scope
}

// QueryOption refines a Query built by Get and MustGet.
type QueryOption func(*Query)

// Named selects the bean declared under name.
func Named(name string) QueryOption {
	return func(q *Query) { q.Name = name }
}

// InScope restricts an unnamed lookup to one scope.
func InScope(scope Scope) QueryOption {
	return func(q *Query) { q.Scope = &scope }
}

// frame is one entry of the resolution stack. Only typ takes part in cycle
// detection; name and scope are kept for the rendered path.
type frame struct {
	typ   reflect.Type
	name  string
	scope string
}

func newFrame(q Query) frame {
	f := frame{typ: q.Type, name: q.Name}
	if q.Scope != nil {
		f.scope = q.Scope.String()
	}
	return f
}

func (f frame) String() string {
	var b strings.Builder
	b.WriteString(f.typ.String())
	if f.name != "" {
		b.WriteString("(" + f.name + ")")
	}
	if f.scope != "" {
		b.WriteString("@" + f.scope)
	}
	return b.String()
}

// resolution is one top-level Get call and everything it pulls in.
// Its stack holds the frames currently in flight, innermost last. A type
// appears on it at most once.
type resolution struct {
	c     *Container
	stack []frame
}

func (r *resolution) Resolve(q Query) (any, error) {
	if q.Type == nil {
		return nil, ErrInvalidQuery
	}
	f := newFrame(q)
	if err := r.push(f); err != nil {
		r.c.logger.Warn("cyclic dependency", zap.String("bean", f.String()), zap.Strings("path", err.Path))
		return nil, err
	}
	defer r.pop(f)

	def, err := r.c.lookup(q)
	if err != nil {
		return nil, err
	}
	inst, err := r.c.resolveInstance(def, r)
	if err != nil {
		return nil, err
	}
	if got := reflect.TypeOf(inst); !got.AssignableTo(q.Type) {
		return nil, &TypeMismatchError{Expected: q.Type.String(), Got: got.String()}
	}
	return inst, nil
}

func (r *resolution) push(f frame) *CyclicDependencyError {
	for i, inFlight := range r.stack {
		if inFlight.typ == f.typ {
			path := make([]string, 0, len(r.stack)-i+1)
			for _, p := range r.stack[i:] {
				path = append(path, p.String())
			}
			path = append(path, f.String())
			return &CyclicDependencyError{Type: f.typ.String(), Path: path}
		}
	}
	r.stack = append(r.stack, f)
	return nil
}

func (r *resolution) pop(f frame) {
	n := len(r.stack)
	if n == 0 {
		panic(&InvariantViolationError{Expected: f.String(), Got: "<empty>"})
	}
	head := r.stack[n-1]
	r.stack = r.stack[:n-1]
	if head != f {
		panic(&InvariantViolationError{Expected: f.String(), Got: head.String()})
	}
}

func (r *resolution) depth() int { return len(r.stack) }
