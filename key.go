package flowdi

import (
	"strings"
)

// Separator joins key segments in their serialized form.
const Separator = "."

// Key is a registry key: an ordered sequence of non-empty segments.
// Two keys are equal when their segments are equal; the zero Key is the root.
type Key struct {
	segments []string
}

// ParseKey splits a dot-joined key into segments. Empty input, empty segments
// ("a..b", ".a", "a.") and surrounding whitespace are rejected.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, &RegistrationError{Key: s, Operation: "parse key", Cause: ErrEmptyKey}
	}

	parts := strings.Split(s, Separator)
	for _, part := range parts {
		if err := validateSegment(part); err != nil {
			return Key{}, &RegistrationError{Key: s, Operation: "parse key", Cause: err}
		}
	}

	return Key{segments: parts}, nil
}

// MustParseKey is like ParseKey but panics on invalid input.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// NewKey builds a key from individual segments.
func NewKey(segments ...string) (Key, error) {
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Key{}, &RegistrationError{Key: strings.Join(segments, Separator), Operation: "build key", Cause: err}
		}
	}
	return Key{segments: append([]string(nil), segments...)}, nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return ErrEmptySegment
	}
	if strings.Contains(seg, Separator) || strings.TrimSpace(seg) != seg {
		return ErrInvalidSegment
	}
	return nil
}

// String returns the dot-joined form.
func (k Key) String() string {
	return strings.Join(k.segments, Separator)
}

// IsRoot reports whether the key has no segments.
func (k Key) IsRoot() bool {
	return len(k.segments) == 0
}

// Len returns the number of segments.
func (k Key) Len() int {
	return len(k.segments)
}

// Segments returns a copy of the segments.
func (k Key) Segments() []string {
	return append([]string(nil), k.segments...)
}

// Last returns the final segment, or "" for the root key.
func (k Key) Last() string {
	if len(k.segments) == 0 {
		return ""
	}
	return k.segments[len(k.segments)-1]
}

// Parent returns the key without its final segment.
func (k Key) Parent() Key {
	if len(k.segments) <= 1 {
		return Key{}
	}
	return Key{segments: k.segments[:len(k.segments)-1]}
}

// Join appends other's segments.
func (k Key) Join(other Key) Key {
	segments := make([]string, 0, len(k.segments)+len(other.segments))
	segments = append(segments, k.segments...)
	segments = append(segments, other.segments...)
	return Key{segments: segments}
}

// Child appends already validated segments.
func (k Key) Child(segments ...string) Key {
	return k.Join(Key{segments: segments})
}

// Equal compares segment by segment.
func (k Key) Equal(other Key) bool {
	if len(k.segments) != len(other.segments) {
		return false
	}
	for i := range k.segments {
		if k.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix's segments lead k's segments.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.segments) > len(k.segments) {
		return false
	}
	for i := range prefix.segments {
		if k.segments[i] != prefix.segments[i] {
			return false
		}
	}
	return true
}

// Relative strips prefix from k. ok is false when k does not start with prefix.
func (k Key) Relative(prefix Key) (rel Key, ok bool) {
	if !k.HasPrefix(prefix) {
		return Key{}, false
	}
	return Key{segments: k.segments[len(prefix.segments):]}, true
}
