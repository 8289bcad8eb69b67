package flowdi

import (
	"fmt"

	"go.uber.org/dig"
)

// ExportToDig makes the value at key available to dc as a named value of
// type T. The key is resolved only when dc needs it.
//
//	dc := dig.New()
//	_ = flowdi.ExportToDig[*slog.Logger](dc, c, "logger")
//	_ = dc.Invoke(func(p struct {
//	    dig.In
//	    Logger *slog.Logger `name:"logger"`
//	}) { ... })
func ExportToDig[T any](dc *dig.Container, l Locator, key string) error {
	if !l.Has(key) {
		return &ResolutionError{Key: key, Cause: ErrDependencyNotFound, Available: l.Keys()}
	}

	err := dc.Provide(func() (T, error) {
		return Resolve[T](l, key)
	}, dig.Name(key))
	if err != nil {
		return fmt.Errorf("export %q to dig: %w", key, err)
	}
	return nil
}

// ImportFromDig registers key as a factory that pulls a T out of dc.
// Singleton unless opts say otherwise; dig itself caches the value either way.
func ImportFromDig[T any](c *Container, dc *dig.Container, key string, opts ...RegisterOption) error {
	return c.Register(key, Factory(func(Locator) (any, error) {
		var out T
		if err := dc.Invoke(func(v T) { out = v }); err != nil {
			return nil, fmt.Errorf("import %q from dig: %w", key, err)
		}
		return out, nil
	}), opts...)
}
