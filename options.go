package flowdi

import (
	"fmt"
	"log/slog"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and lifecycle events.
// A nil logger keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrictRegistration makes registering an existing key fail with
// ErrKeyExists unless the call passes Overwrite(true).
func WithStrictRegistration() Option {
	return func(c *Container) {
		c.strict = true
	}
}

// A RegisterOption modifies the default behavior of Register.
type RegisterOption interface {
	applyRegisterOption(*registerOptions)
}

type registerOptions struct {
	lifetime  Lifetime
	overwrite *bool
}

func newRegisterOptions(opts []RegisterOption) *registerOptions {
	o := &registerOptions{lifetime: Singleton}
	for _, opt := range opts {
		if opt != nil {
			opt.applyRegisterOption(o)
		}
	}
	return o
}

func (o *registerOptions) allowOverwrite(strict bool) bool {
	if o.overwrite != nil {
		return *o.overwrite
	}
	return !strict
}

// WithLifetime sets the lifetime of factories and constants. Resolver
// descriptors carry their own lifetime tag and ignore this option.
func WithLifetime(l Lifetime) RegisterOption {
	return lifetimeOption(l)
}

// AsTransient is shorthand for WithLifetime(Transient).
func AsTransient() RegisterOption {
	return lifetimeOption(Transient)
}

type lifetimeOption Lifetime

func (o lifetimeOption) String() string {
	return fmt.Sprintf("WithLifetime(%s)", Lifetime(o))
}

func (o lifetimeOption) applyRegisterOption(opts *registerOptions) {
	opts.lifetime = Lifetime(o)
}

// Overwrite controls whether the registration may replace an existing key.
// Without it the container's default applies: replace, unless the container
// was built WithStrictRegistration.
func Overwrite(allow bool) RegisterOption {
	return overwriteOption(allow)
}

type overwriteOption bool

func (o overwriteOption) String() string {
	return fmt.Sprintf("Overwrite(%t)", bool(o))
}

func (o overwriteOption) applyRegisterOption(opts *registerOptions) {
	allow := bool(o)
	opts.overwrite = &allow
}

// A ResolveOption modifies the behavior of Resolve.
type ResolveOption interface {
	applyResolveOption(*resolveOptions)
}

type resolveOptions struct {
	allowUnregistered bool
}

func newResolveOptions(opts []ResolveOption) resolveOptions {
	var o resolveOptions
	for _, opt := range opts {
		if opt != nil {
			opt.applyResolveOption(&o)
		}
	}
	return o
}

// AllowUnregistered makes Resolve return (nil, nil) for unknown keys
// instead of a DependencyNotFound error.
func AllowUnregistered() ResolveOption {
	return allowUnregisteredOption{}
}

type allowUnregisteredOption struct{}

func (allowUnregisteredOption) String() string {
	return "AllowUnregistered()"
}

func (allowUnregisteredOption) applyResolveOption(opts *resolveOptions) {
	opts.allowUnregistered = true
}
