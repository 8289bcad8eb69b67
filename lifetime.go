package flowdi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lifetime specifies how often a registration's factory runs.
type Lifetime int

const (
	// Singleton invokes the factory at most once; the result is cached for
	// the lifetime of the container.
	Singleton Lifetime = iota

	// Transient invokes the factory on every resolution and never caches.
	Transient
)

// Lifetime tags understood by resolver descriptors.
const (
	TagSingleton = "SINGLETON"
	TagTransient = "TRANSIENT"
	TagScoped    = "SCOPED"
)

// String returns the string representation of the Lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Transient:
		return "Transient"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// IsValid checks if the lifetime is valid.
func (l Lifetime) IsValid() bool {
	return l >= Singleton && l <= Transient
}

// LifetimeFromTag maps a resolver lifetime tag to a Lifetime. Only TRANSIENT
// (case-insensitive) yields Transient; an empty tag and every other tag,
// including SCOPED, yield Singleton.
func LifetimeFromTag(tag string) Lifetime {
	if strings.EqualFold(strings.TrimSpace(tag), TagTransient) {
		return Transient
	}
	return Singleton
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Singleton", "singleton", TagSingleton:
		*l = Singleton
	case "Transient", "transient", TagTransient:
		*l = Transient
	default:
		return &LifetimeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Lifetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lifetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return l.UnmarshalText([]byte(s))
}
