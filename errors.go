package flowdi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/flowra/flowdi/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below unwrap to these, so callers can match with errors.Is.

var (
	// Resolution errors.
	ErrDependencyNotFound = errors.New("dependency not found")

	// Registration errors.
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrEmptyKey            = errors.New("key cannot be empty")
	ErrEmptySegment        = errors.New("key segments cannot be empty")
	ErrInvalidSegment      = errors.New("key segments cannot contain separators or surrounding spaces")
	ErrUnsupportedValue    = errors.New("unsupported registration value")
	ErrKeyExists           = errors.New("key already registered")
	ErrInvalidAlias        = errors.New("alias and target are required")

	// Lifecycle errors.
	ErrContainerClosed = errors.New("container has been closed")
	ErrScopeFinalized  = errors.New("scope has been finalized")

	// Module errors.
	ErrDuplicateModuleName = errors.New("duplicate module name")
	ErrMissingManifestName = errors.New("module requires a manifest name")
	ErrReservedModuleName  = errors.New("module name is reserved")
	ErrModuleNotDefined    = errors.New("no module definition matches manifest entry")
)

var (
	_ error = (*ResolutionError)(nil)
	_ error = (*RegistrationError)(nil)
	_ error = (*AliasError)(nil)
	_ error = (*FactoryError)(nil)
	_ error = (*FactoryPanicError)(nil)
	_ error = (*TypeMismatchError)(nil)
	_ error = (*ModuleError)(nil)
	_ error = (*LifetimeError)(nil)
	_ error = (*DisposalError)(nil)
	_ error = (*CircularDependencyError)(nil)
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// CircularDependencyError is returned when a key is requested again while its
// own factory is still running. Path lists the keys under construction, outermost first.
type CircularDependencyError = graph.CircularDependencyError

// ResolutionError reports a key that is not registered.
type ResolutionError struct {
	Key       string
	Cause     error
	Available []string // registered keys, used for suggestions
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("dependency %q is not registered in the container", e.Key))

	if e.Cause != nil && !errors.Is(e.Cause, ErrDependencyNotFound) {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if similar := findSimilarKeys(e.Key, e.Available); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, k := range similar {
			b.WriteString(fmt.Sprintf("  • %s\n", k))
		}
	}

	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// findSimilarKeys returns registered keys that share the final segment with
// target or contain one another, capped at five suggestions.
func findSimilarKeys(target string, available []string) []string {
	if target == "" || len(available) == 0 {
		return nil
	}

	last := target
	if i := strings.LastIndex(target, Separator); i >= 0 {
		last = target[i+1:]
	}
	lowerTarget := strings.ToLower(target)
	lowerLast := strings.ToLower(last)

	var similar []string
	for _, k := range available {
		if k == target {
			continue
		}

		lowerKey := strings.ToLower(k)
		if strings.HasSuffix(lowerKey, Separator+lowerLast) ||
			lowerKey == lowerLast ||
			strings.Contains(lowerKey, lowerTarget) ||
			strings.Contains(lowerTarget, lowerKey) {
			similar = append(similar, k)
		}

		if len(similar) >= 5 {
			break
		}
	}

	return similar
}

// RegistrationError wraps errors during registration. It always matches
// ErrInvalidRegistration in addition to its cause.
type RegistrationError struct {
	Key       string
	Operation string // "register", "parse key", "create scope", ...
	Cause     error
}

func (e *RegistrationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("failed to %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("failed to %s %q: %v", e.Operation, e.Key, e.Cause)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

func (e *RegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}

// AliasError reports an alias declaration that cannot be registered.
type AliasError struct {
	Alias  string
	Target string
	Scope  string // empty for container-level aliases
	Cause  error  // nil when alias or target is missing
}

func (e *AliasError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("invalid alias %q -> %q", e.Alias, e.Target))
	if e.Scope != "" {
		b.WriteString(fmt.Sprintf(" in scope %q", e.Scope))
	}
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	} else {
		b.WriteString(": alias and target are required")
	}
	return b.String()
}

func (e *AliasError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidAlias, e.Cause}
	}
	return []error{ErrInvalidAlias}
}

// FactoryError wraps an error returned by a factory.
type FactoryError struct {
	Key   string
	Cause error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("factory for %q failed: %v", e.Key, e.Cause)
}

func (e *FactoryError) Unwrap() error {
	return e.Cause
}

// FactoryPanicError indicates a factory panicked during invocation.
// It captures the panic value and stack trace for debugging.
type FactoryPanicError struct {
	Key   string
	Panic any
	Stack []byte
}

func (e *FactoryPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("factory for %q panicked: %v\n", e.Key, e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// TypeMismatchError indicates a resolved value did not have the requested type.
type TypeMismatchError struct {
	Key      string
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type assertion for %q: expected %s, got %s", e.Key, formatType(e.Expected), formatType(e.Actual))
}

// ModuleError wraps errors from module registration.
type ModuleError struct {
	Module string
	Cause  error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e *ModuleError) Unwrap() error {
	return e.Cause
}

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e *LifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime: %v", e.Value)
}

// DisposalError aggregates disposal errors
type DisposalError struct {
	Context string
	Errors  []error
}

func (e *DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s disposal failed: %v", e.Context, e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s disposal failed with %d errors:", e.Context, len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e *DisposalError) Unwrap() []error {
	return e.Errors
}

// IsNotFound reports whether err stems from resolving an unregistered key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDependencyNotFound)
}

// IsCircular reports whether err is or wraps a CircularDependencyError.
func IsCircular(err error) bool {
	var cErr *CircularDependencyError
	return errors.As(err, &cErr)
}

func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
