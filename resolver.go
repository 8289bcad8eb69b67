package flowdi

import (
	"reflect"
	"strings"
)

// Locator is handed to factories so they can pull further dependencies.
// The Container itself is a Locator; inside a factory the Locator also tracks
// the chain of keys under construction.
type Locator interface {
	Resolve(key string, opts ...ResolveOption) (any, error)
	Has(key string) bool
	Keys() []string
}

// Factory builds a value. It is singleton by default.
type Factory func(l Locator) (any, error)

// Resolver is a registration value that knows how to build itself.
// Implementations may also implement LifetimeTagger.
type Resolver interface {
	Resolve(l Locator) (any, error)
}

// LifetimeTagger exposes a lifetime tag such as "SINGLETON" or "TRANSIENT".
type LifetimeTagger interface {
	LifetimeTag() string
}

// Registrations is a nested registration mapping. Nested maps are flattened
// into dot-joined keys.
type Registrations map[string]any

// Descriptor is the built-in Resolver: a factory plus a lifetime tag.
// Descriptors are immutable; every builder method returns a copy.
//
//	scope.Register(flowdi.Registrations{
//	    "services": flowdi.Registrations{
//	        "main": flowdi.AsFunction(newUsersService).Singleton(),
//	    },
//	    "routes": flowdi.AsValue(registerRoutes),
//	})
type Descriptor struct {
	factory Factory
	tag     string
}

// AsFunction wraps a factory in a Descriptor tagged SINGLETON.
func AsFunction(f Factory) *Descriptor {
	return &Descriptor{factory: f, tag: TagSingleton}
}

// AsValue wraps a constant. Use it for values that would otherwise be taken
// as factories or nested registrations, such as functions and maps.
func AsValue(v any) *Descriptor {
	return &Descriptor{
		factory: func(Locator) (any, error) { return v, nil },
		tag:     TagSingleton,
	}
}

// Singleton returns a copy tagged SINGLETON.
func (d *Descriptor) Singleton() *Descriptor {
	return d.WithLifetimeTag(TagSingleton)
}

// Transient returns a copy tagged TRANSIENT.
func (d *Descriptor) Transient() *Descriptor {
	return d.WithLifetimeTag(TagTransient)
}

// Scoped returns a copy tagged SCOPED. The container has no per-scope
// instances, so a scoped descriptor behaves as a singleton.
func (d *Descriptor) Scoped() *Descriptor {
	return d.WithLifetimeTag(TagScoped)
}

// WithLifetimeTag returns a copy carrying tag.
func (d *Descriptor) WithLifetimeTag(tag string) *Descriptor {
	return &Descriptor{factory: d.factory, tag: tag}
}

// Resolve implements Resolver.
func (d *Descriptor) Resolve(l Locator) (any, error) {
	return d.factory(l)
}

// LifetimeTag implements LifetimeTagger.
func (d *Descriptor) LifetimeTag() string {
	return d.tag
}

// asRegistrations reports whether value is a nested registration mapping.
func asRegistrations(value any) (Registrations, bool) {
	switch v := value.(type) {
	case Registrations:
		return v, true
	case map[string]any:
		return Registrations(v), true
	default:
		return nil, false
	}
}

// normalize converts a registration value into an entry.
func normalize(key string, value any, o *registerOptions) (*entry, error) {
	switch v := value.(type) {
	case nil:
		return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}

	case *Descriptor:
		if v == nil || v.factory == nil {
			return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}
		}
		return newEntry(key, KindResolver, v.Resolve, LifetimeFromTag(v.tag)), nil

	case Resolver:
		tag := ""
		if t, ok := v.(LifetimeTagger); ok {
			tag = t.LifetimeTag()
		}
		return newEntry(key, KindResolver, v.Resolve, LifetimeFromTag(tag)), nil

	case Factory:
		if v == nil {
			return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}
		}
		return newEntry(key, KindFactory, v, o.lifetime), nil

	case func(Locator) (any, error):
		if v == nil {
			return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}
		}
		return newEntry(key, KindFactory, v, o.lifetime), nil

	case func(Locator) any:
		if v == nil {
			return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}
		}
		return newEntry(key, KindFactory, func(l Locator) (any, error) { return v(l), nil }, o.lifetime), nil
	}

	if _, nested := asRegistrations(value); nested {
		return nil, &RegistrationError{Key: key, Operation: "register", Cause: ErrUnsupportedValue}
	}

	// Any other function signature is ambiguous: it could be meant as a
	// factory or stored as-is. Callers must use AsValue for the latter.
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return nil, &RegistrationError{
			Key:       key,
			Operation: "register",
			Cause:     unsupportedFunc(value),
		}
	}

	return newEntry(key, KindValue, func(Locator) (any, error) { return value, nil }, o.lifetime), nil
}

type unsupportedFuncError struct {
	typ reflect.Type
}

func unsupportedFunc(value any) error {
	return &unsupportedFuncError{typ: reflect.TypeOf(value)}
}

func (e *unsupportedFuncError) Error() string {
	var b strings.Builder
	b.WriteString(ErrUnsupportedValue.Error())
	b.WriteString(": function of type ")
	b.WriteString(e.typ.String())
	b.WriteString(" is neither a Factory nor func(Locator) any; wrap constants with AsValue")
	return b.String()
}

func (e *unsupportedFuncError) Unwrap() error {
	return ErrUnsupportedValue
}
