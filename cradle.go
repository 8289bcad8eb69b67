package flowdi

import "iter"

// Cradle is a read-only view over every registered key. It holds no state of
// its own: Get resolves through the underlying Locator and unknown keys yield
// nil instead of an error.
//
// Inside a factory, build the cradle from the Locator the factory received so
// nested resolutions keep their place in the resolution chain. Container.Cradle
// resolves from the top: singleton cycles through it are still reported, but
// a transient that reaches itself through it recurses without end.
//
//	func newMailer(l flowdi.Locator) (any, error) {
//	    cradle := flowdi.NewCradle(l)
//	    cfg, _ := cradle.Get("config")
//	    ...
//	}
type Cradle struct {
	loc Locator
}

// NewCradle returns a Cradle over l.
func NewCradle(l Locator) *Cradle {
	return &Cradle{loc: l}
}

// Get resolves key. It returns (nil, nil) when key is not registered; factory
// failures and cycles are still reported.
func (c *Cradle) Get(key string) (any, error) {
	return c.loc.Resolve(key, AllowUnregistered())
}

// Has reports whether key is registered.
func (c *Cradle) Has(key string) bool {
	return c.loc.Has(key)
}

// Keys returns every registered key in registration order.
func (c *Cradle) Keys() []string {
	return c.loc.Keys()
}

// Len returns the number of registered keys.
func (c *Cradle) Len() int {
	return len(c.loc.Keys())
}

// All iterates over a snapshot of the registered keys.
func (c *Cradle) All() iter.Seq[string] {
	keys := c.loc.Keys()
	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}
