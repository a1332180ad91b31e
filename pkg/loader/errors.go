package loader

import (
	"errors"
	"fmt"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

var (
	// ErrAlreadyResolved is returned by a second call to [Context.Resolve]
	// and by [Context.Register] after resolution.
	ErrAlreadyResolved = errs.New(errs.ErrCodeAlreadyResolved, "modules already resolved")

	// ErrNotResolved is returned when modules are accessed before
	// [Context.Resolve] succeeded or after [Context.Teardown].
	ErrNotResolved = errs.New(errs.ErrCodeNotResolved, "modules not resolved")

	// ErrIllegalDependency is the sentinel wrapped by [IllegalDependencyError].
	ErrIllegalDependency = errors.New("illegal dependency")
)

// IllegalDependencyError reports a module needing an id it never declared.
type IllegalDependencyError struct {
	Module string
	Target string
}

func (e *IllegalDependencyError) Error() string {
	return fmt.Sprintf("id %s is not a declared dependency of module %s", e.Target, e.Module)
}

// Unwrap returns [ErrIllegalDependency].
func (e *IllegalDependencyError) Unwrap() error { return ErrIllegalDependency }

// Code implements errors.Coder.
func (e *IllegalDependencyError) Code() errs.Code { return errs.ErrCodeIllegalDependency }

// FactoryError wraps a failure returned by a module's factory.
type FactoryError struct {
	Module string
	Err    error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("construct module %s: %v", e.Module, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }
