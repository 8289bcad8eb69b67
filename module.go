package flowdi

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
)

const (
	// ModulesPrefix is the key every module scope lives under.
	ModulesPrefix = "modules"
	// ModulesMetaKey holds a map of module name to ModuleMeta.
	ModulesMetaKey = "modules.meta"
	// RoutesKey is the scope-relative key module routes are registered under.
	RoutesKey = "routes"
)

// ModuleOption is one registration step inside a module scope.
type ModuleOption func(*Scope) error

// NewModule groups registration steps into a single register function.
//
//	var UsersModule = flowdi.NewModule("users",
//	    flowdi.AddFactory("services.main", newUsersService),
//	    flowdi.AddValue("models.user", userModel{}),
//	    flowdi.AddTransient("validators.signup", newSignupValidator),
//	)
func NewModule(name string, builders ...ModuleOption) ModuleOption {
	return func(s *Scope) error {
		for _, builder := range builders {
			if builder == nil {
				continue
			}

			if err := builder(s); err != nil {
				return &ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// AddRegistrations registers a nested mapping in the scope.
func AddRegistrations(regs Registrations, opts ...RegisterOption) ModuleOption {
	return func(s *Scope) error {
		return s.Register(regs, opts...)
	}
}

// AddValue registers a constant at the scope-relative key.
func AddValue(key string, value any) ModuleOption {
	return func(s *Scope) error {
		return s.Register(Registrations{key: AsValue(value)})
	}
}

// AddFactory registers a singleton factory at the scope-relative key.
func AddFactory(key string, f Factory) ModuleOption {
	return func(s *Scope) error {
		return s.Register(Registrations{key: f})
	}
}

// AddTransient registers a transient factory at the scope-relative key.
func AddTransient(key string, f Factory) ModuleOption {
	return func(s *Scope) error {
		return s.Register(Registrations{key: f}, AsTransient())
	}
}

// AddAlias registers a global alias for a scope-relative target.
func AddAlias(alias, target string) ModuleOption {
	return func(s *Scope) error {
		return s.RegisterAlias(alias, target)
	}
}

// ManifestEntry is one module as declared in a manifest.
type ManifestEntry struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
}

// ModuleDescriptor is everything the composer needs to mount a module.
type ModuleDescriptor struct {
	Name     string
	Register ModuleOption
	Routes   any               // registered as scope.routes when non-nil
	Aliases  map[string]string // global alias -> scope-relative target
	Manifest ManifestEntry
}

// ModuleMeta is the per-module value stored under ModulesMetaKey.
type ModuleMeta struct {
	HasRoutes bool          `json:"hasRoutes" yaml:"hasRoutes"`
	Manifest  ManifestEntry `json:"manifest" yaml:"manifest"`
}

// RegisterModules mounts every descriptor under "modules.<name>" in order,
// then registers the "modules" accessor and the "modules.meta" map.
//
// For each module the composer opens the scope, runs Register, registers
// Routes, finalizes the scope and finally registers the aliases, sorted by
// alias name.
func RegisterModules(c *Container, modules []ModuleDescriptor) error {
	names := make([]string, 0, len(modules))
	meta := make(map[string]ModuleMeta, len(modules))

	for _, m := range modules {
		if m.Name == "" {
			return &ModuleError{Module: m.Manifest.Path, Cause: ErrMissingManifestName}
		}
		if m.Name == "meta" {
			return &ModuleError{Module: m.Name, Cause: ErrReservedModuleName}
		}
		if _, dup := meta[m.Name]; dup {
			return &ModuleError{Module: m.Name, Cause: ErrDuplicateModuleName}
		}

		if err := mountModule(c, m); err != nil {
			var mErr *ModuleError
			if errors.As(err, &mErr) && mErr.Module == m.Name {
				return err
			}
			return &ModuleError{Module: m.Name, Cause: err}
		}

		names = append(names, m.Name)
		meta[m.Name] = ModuleMeta{HasRoutes: m.Routes != nil, Manifest: m.Manifest}
	}

	root, err := ParseKey(ModulesPrefix)
	if err != nil {
		return err
	}

	e := newEntry(ModulesPrefix, KindAccessor, func(l Locator) (any, error) {
		return newAccessor(ModulesPrefix, root, slices.Clone(names), l), nil
	}, Singleton)
	if err := c.store(e, newRegisterOptions(nil)); err != nil {
		return err
	}

	if err := c.Register(ModulesMetaKey, AsValue(meta)); err != nil {
		return err
	}

	c.logger.Debug("modules.registered", slog.Int("count", len(names)), slog.Any("modules", names))
	return nil
}

func mountModule(c *Container, m ModuleDescriptor) error {
	scope, err := c.CreateScope(ModulesPrefix + Separator + m.Name)
	if err != nil {
		return err
	}

	if m.Register != nil {
		if err := m.Register(scope); err != nil {
			return err
		}
	}

	if m.Routes != nil {
		if err := scope.Register(Registrations{RoutesKey: AsValue(m.Routes)}); err != nil {
			return err
		}
	}

	if err := scope.Finalize(); err != nil {
		return err
	}

	aliases := make([]string, 0, len(m.Aliases))
	for alias := range m.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		if err := scope.RegisterAlias(alias, m.Aliases[alias]); err != nil {
			return err
		}
	}

	return nil
}

// ModuleMetas returns the value stored under ModulesMetaKey.
func ModuleMetas(l Locator) (map[string]ModuleMeta, error) {
	meta, err := Resolve[map[string]ModuleMeta](l, ModulesMetaKey)
	if err != nil {
		return nil, fmt.Errorf("read module metadata: %w", err)
	}
	return meta, nil
}
