package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilFactory is returned when a definition carries no factory.
	ErrNilFactory = errors.New("container: nil factory")

	// ErrNilInstance is returned when a factory produces a nil instance.
	ErrNilInstance = errors.New("container: factory returned nil instance")

	// ErrInvalidDefinition is returned for malformed bean definitions.
	ErrInvalidDefinition = errors.New("container: invalid bean definition")
)

// CyclicDependencyError is returned when a bean is requested while it is
// already being resolved further up the same resolution.
type CyclicDependencyError struct {
	Type string
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("container: cyclic dependency for %s", e.Type)
	}
	return fmt.Sprintf("container: cyclic dependency for %s: %s", e.Type, strings.Join(e.Path, " -> "))
}

// BeanNotFoundError is returned when no definition matches a request.
type BeanNotFoundError struct {
	Type  string
	Name  string
	Scope string
}

func (e *BeanNotFoundError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("container: no bean named %q", e.Name)
	case e.Scope != "":
		return fmt.Sprintf("container: no bean for type %s in scope %s", e.Type, e.Scope)
	default:
		return fmt.Sprintf("container: no bean for type %s", e.Type)
	}
}

// AmbiguousBeanError is returned when an unnamed lookup matches definitions
// in more than one scope. Resolve with InScope to pick one.
type AmbiguousBeanError struct {
	Type   string
	Scopes []string
}

func (e *AmbiguousBeanError) Error() string {
	return fmt.Sprintf("container: ambiguous bean for type %s, declared in scopes [%s]",
		e.Type, strings.Join(e.Scopes, ", "))
}

// ScopeNotFoundError is returned when a scope was never declared.
type ScopeNotFoundError struct {
	Scope string
}

func (e *ScopeNotFoundError) Error() string {
	return fmt.Sprintf("container: no scope defined for %s", e.Scope)
}

// TypeMismatchError is returned when a resolved value is not of the requested type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// InstantiationError wraps a failure raised while running a bean factory.
type InstantiationError struct {
	Type string
	Err  error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("container: instantiation failed for %s: %v", e.Type, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// InvariantViolationError is the panic value raised when the resolution
// stack is popped out of order. It signals a bug in the container, never a
// user error.
type InvariantViolationError struct {
	Expected string
	Got      string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("container: resolution stack head was %s but must be %s", e.Got, e.Expected)
}

// AmbiguousScopeError is returned when a short scope name matches scopes of
// several owner types. Their package-qualified IDs are listed.
type AmbiguousScopeError struct {
	Name string
	IDs  []string
}

func (e *AmbiguousScopeError) Error() string {
	return fmt.Sprintf("container: scope name %s is ambiguous: %s", e.Name, strings.Join(e.IDs, ", "))
}
