package flowdi

import "sync/atomic"

// Kind describes how a registration was made.
type Kind int

const (
	// KindValue is a constant.
	KindValue Kind = iota
	// KindFactory is a plain factory function.
	KindFactory
	// KindResolver is a Resolver descriptor such as AsFunction or AsValue.
	KindResolver
	// KindAlias resolves another key.
	KindAlias
	// KindAccessor is a section or root accessor synthesized by Scope.Finalize.
	KindAccessor
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindFactory:
		return "Factory"
	case KindResolver:
		return "Resolver"
	case KindAlias:
		return "Alias"
	case KindAccessor:
		return "Accessor"
	default:
		return "Unknown"
	}
}

// Registration describes a registered key without resolving it.
type Registration struct {
	Key         string
	Kind        Kind
	Lifetime    Lifetime
	Constructed bool   // a singleton instance is cached
	Target      string // aliases only
}

// entry is one registry cell.
type entry struct {
	key      string
	kind     Kind
	factory  Factory
	lifetime Lifetime
	target   string

	// Singleton cache. instance is written once under Container.buildMu
	// before built is set.
	built    atomic.Bool
	instance any
}

func newEntry(key string, kind Kind, factory Factory, lifetime Lifetime) *entry {
	return &entry{
		key:      key,
		kind:     kind,
		factory:  factory,
		lifetime: lifetime,
	}
}

func (e *entry) describe() Registration {
	return Registration{
		Key:         e.key,
		Kind:        e.kind,
		Lifetime:    e.lifetime,
		Constructed: e.built.Load(),
		Target:      e.target,
	}
}
