package solver

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
)

var (
	// ErrConflictingDirection is wrapped by [*ConflictingDirectionError].
	ErrConflictingDirection = errors.New("conflicting dependency direction")

	// ErrMissingRequired is wrapped by [*MissingRequiredError].
	ErrMissingRequired = errors.New("missing required dependency")

	// ErrNoRootModule is wrapped by [*NoRootModuleError].
	ErrNoRootModule = errors.New("no module without dependencies")

	// ErrUnsatisfied is wrapped by [*UnsatisfiedError].
	ErrUnsatisfied = errors.New("unsatisfied dependencies")

	// ErrDuplicateModule is wrapped by [*DuplicateModuleError].
	ErrDuplicateModule = errors.New("duplicate module id")
)

// ConflictingDirectionError reports that two modules would have to load
// both before and after each other.
type ConflictingDirectionError struct {
	From     string          // module that would depend on To
	To       string          // module that already depends on From
	Relation module.Relation // relation that produced the rejected edge
	Spec     module.Spec
}

func (e *ConflictingDirectionError) Error() string {
	return fmt.Sprintf("conflicting direction: %s cannot depend on %s (%s %s), %s already depends on %s",
		e.From, e.To, e.Relation, e.Spec, e.To, e.From)
}

func (e *ConflictingDirectionError) Unwrap() error { return ErrConflictingDirection }

// Code returns the error code for this error type.
func (e *ConflictingDirectionError) Code() errs.Code { return errs.ErrCodeConflictingDirection }

// MissingRequiredError reports a required spec that no module satisfies.
type MissingRequiredError struct {
	Module string
	Spec   module.Spec
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("module %s requires %s, which is not present", e.Module, e.Spec)
}

func (e *MissingRequiredError) Unwrap() error { return ErrMissingRequired }

// Code returns the error code for this error type.
func (e *MissingRequiredError) Code() errs.Code { return errs.ErrCodeMissingRequired }

// NoRootModuleError reports a non-empty module set in which every module
// depends on another.
type NoRootModuleError struct {
	Modules []string
	Cycle   []string // one dependency cycle, first and last entries equal
}

func (e *NoRootModuleError) Error() string {
	msg := fmt.Sprintf("no root module: all %d modules have dependencies", len(e.Modules))
	if len(e.Cycle) > 0 {
		msg += " (cycle " + strings.Join(e.Cycle, " → ") + ")"
	}
	return msg
}

func (e *NoRootModuleError) Unwrap() error { return ErrNoRootModule }

// Code returns the error code for this error type.
func (e *NoRootModuleError) Code() errs.Code { return errs.ErrCodeNoRootModule }

// UnsatisfiedError lists the modules that could not be placed. This covers
// dependency cycles longer than two, modules stuck behind them, and modules
// whose soft dependency is present only at a version outside the range.
type UnsatisfiedError struct {
	Modules []string            // sorted declared ids
	Blocked map[string][]string // module id -> specs or dependencies not yet satisfied
	Cycle   []string            // one dependency cycle if the graph has any
}

func (e *UnsatisfiedError) Error() string {
	msg := "unsatisfied dependencies: " + strings.Join(e.Modules, ", ")
	if len(e.Cycle) > 0 {
		msg += " (cycle " + strings.Join(e.Cycle, " → ") + ")"
	}
	return msg
}

func (e *UnsatisfiedError) Unwrap() error { return ErrUnsatisfied }

// Code returns the error code for this error type.
func (e *UnsatisfiedError) Code() errs.Code { return errs.ErrCodeUnsatisfied }

// DuplicateModuleError reports two input entries whose ids are equal
// ignoring case.
type DuplicateModuleError struct {
	ID       string
	Existing string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("duplicate module id %q (already registered as %q)", e.ID, e.Existing)
}

func (e *DuplicateModuleError) Unwrap() error { return ErrDuplicateModule }

// Code returns the error code for this error type.
func (e *DuplicateModuleError) Code() errs.Code { return errs.ErrCodeDuplicateModule }
