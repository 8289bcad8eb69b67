package flowdi

import (
	"fmt"
	"slices"
	"strings"
)

// Accessor is a read-only view over a group of keys that share a prefix.
// Scope.Finalize registers one per section ("modules.users.services") and
// one for the scope itself ("modules.users").
//
// Fields are evaluated on access: Get resolves the underlying key, so
// singleton fields return the same instance as resolving the full key.
// A factory that resolves an accessor receives a copy bound to its own
// Locator; everywhere else the accessor resolves through the container.
type Accessor struct {
	name   string
	base   string
	fields []string
	loc    Locator
}

func newAccessor(name string, base Key, fields []string, loc Locator) *Accessor {
	return &Accessor{
		name:   name,
		base:   base.String(),
		fields: fields,
		loc:    loc,
	}
}

func (a *Accessor) withLocator(l Locator) *Accessor {
	if a.loc == l {
		return a
	}
	b := *a
	b.loc = l
	return &b
}

// Name returns the accessor name: the section name, or the scope name for a
// root accessor.
func (a *Accessor) Name() string {
	return a.name
}

// Fields returns the field names in registration order. A field may contain
// dots when it stands for a deeper sub-path, e.g. "auth.login".
func (a *Accessor) Fields() []string {
	return slices.Clone(a.fields)
}

// Len returns the number of fields.
func (a *Accessor) Len() int {
	return len(a.fields)
}

// Has reports whether field exists.
func (a *Accessor) Has(field string) bool {
	return slices.Contains(a.fields, field)
}

// Key returns the registry key behind field.
func (a *Accessor) Key(field string) (string, bool) {
	if !a.Has(field) {
		return "", false
	}
	return a.base + Separator + field, true
}

// Get resolves field.
func (a *Accessor) Get(field string) (any, error) {
	key, ok := a.Key(field)
	if !ok {
		return nil, a.notFound(field)
	}
	return a.loc.Resolve(key)
}

// MustGet is like Get but panics on error.
func (a *Accessor) MustGet(field string) any {
	v, err := a.Get(field)
	if err != nil {
		panic(fmt.Sprintf("accessor %q: %v", a.name, err))
	}
	return v
}

// Lookup walks a dotted path through nested accessors:
// root.Lookup("services.main") equals root.Get("services") followed by
// Get("main") on the section accessor. The longest matching field wins at
// every step.
func (a *Accessor) Lookup(path string) (any, error) {
	if path == "" {
		return a, nil
	}

	segs := strings.Split(path, Separator)
	for i := len(segs); i > 0; i-- {
		field := strings.Join(segs[:i], Separator)
		if !a.Has(field) {
			continue
		}

		v, err := a.Get(field)
		if err != nil || i == len(segs) {
			return v, err
		}

		next, ok := v.(*Accessor)
		if !ok {
			return nil, a.notFound(path)
		}
		return next.Lookup(strings.Join(segs[i:], Separator))
	}

	return nil, a.notFound(path)
}

// String implements fmt.Stringer.
func (a *Accessor) String() string {
	return fmt.Sprintf("%s{%s}", a.name, strings.Join(a.fields, ", "))
}

func (a *Accessor) notFound(path string) error {
	available := make([]string, len(a.fields))
	for i, f := range a.fields {
		available[i] = a.base + Separator + f
	}
	return &ResolutionError{
		Key:       a.base + Separator + path,
		Cause:     ErrDependencyNotFound,
		Available: available,
	}
}

// Field resolves path on a and asserts the result to T.
func Field[T any](a *Accessor, path string) (T, error) {
	var zero T

	v, err := a.Lookup(path)
	if err != nil {
		return zero, err
	}

	result, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Key:      a.base + Separator + path,
			Expected: typeOf[T](),
			Actual:   typeOfValue(v),
		}
	}
	return result, nil
}
