package flowdi

import (
	"fmt"
	"reflect"
)

// Resolve resolves key through l and asserts the result to T.
//
//	svc, err := flowdi.Resolve[*UsersService](c, "modules.users.services.main")
func Resolve[T any](l Locator, key string) (T, error) {
	var zero T

	instance, err := l.Resolve(key)
	if err != nil {
		return zero, err
	}

	result, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Key:      key,
			Expected: typeOf[T](),
			Actual:   typeOfValue(instance),
		}
	}

	return result, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](l Locator, key string) T {
	result, err := Resolve[T](l, key)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %q: %v", key, err))
	}
	return result
}

// Optional resolves key as T, returning ok=false when the key is not
// registered.
func Optional[T any](l Locator, key string) (value T, ok bool, err error) {
	if !l.Has(key) {
		return value, false, nil
	}
	value, err = Resolve[T](l, key)
	return value, err == nil, err
}

// Provide returns a Factory that calls fn with the value at dep.
//
//	c.Register("greeter", flowdi.Provide("logger", func(log *slog.Logger) (any, error) {
//	    return NewGreeter(log), nil
//	}))
func Provide[D any](dep string, fn func(D) (any, error)) Factory {
	return func(l Locator) (any, error) {
		d, err := Resolve[D](l, dep)
		if err != nil {
			return nil, err
		}
		return fn(d)
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typeOfValue(v any) reflect.Type {
	return reflect.TypeOf(v)
}
