// Package flowdi is a string-keyed dependency injection container for
// modular applications.
//
// # Overview
//
// Values live under dot-joined keys such as "logger" or
// "modules.users.services.main". They are registered as constants, factories
// or resolver descriptors and built lazily on the first Resolve:
//   - Two lifetimes: Singleton (built once, cached) and Transient (built on every call)
//   - Nested registration mappings flattened into dotted keys
//   - Scopes that register under a prefix and synthesize accessors on Finalize
//   - Aliases that share the target's instance
//   - A Cradle view for discovery of optional dependencies
//   - A module composer that mounts modules from a manifest
//
// # Basic Usage
//
//	c := flowdi.New(flowdi.WithLogger(logger))
//	defer c.Close()
//
//	_ = c.Register("config", cfg)
//	_ = c.Register("db", func(l flowdi.Locator) (any, error) {
//	    cfg, err := flowdi.Resolve[*Config](l, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return openDatabase(cfg.DSN)
//	})
//
//	db, err := flowdi.Resolve[*Database](c, "db")
//
// # Lifetimes
//
// Factories are singletons unless registered with AsTransient. Resolver
// descriptors carry a lifetime tag instead:
//
//	c.Register("validationFactory", flowdi.AsFunction(newValidator).Transient())
//
// Only the TRANSIENT tag produces a transient; SINGLETON, SCOPED and any other
// tag produce a singleton.
//
// # Nested Registrations
//
// A Registrations value is flattened into one key per leaf:
//
//	c.Register("infra", flowdi.Registrations{
//	    "db":    newDatabase,
//	    "cache": flowdi.Registrations{"redis": newRedis},
//	})
//	// registers "infra.db" and "infra.cache.redis"
//
// Container.Register does not create accessors for "infra" or "infra.cache".
// Use a Scope for that.
//
// # Scopes and Accessors
//
// A Scope prefixes every key it registers and remembers the sections it saw.
// Finalize then registers, lazily:
//   - an Accessor at prefix.section for every section with deeper keys
//   - an Accessor at prefix with one field per section
//
//	scope, _ := c.CreateScope("modules.users")
//	_ = scope.Register(flowdi.Registrations{
//	    "services": flowdi.Registrations{"main": newUsersService},
//	})
//	_ = scope.Finalize()
//
//	users, _ := flowdi.Resolve[*flowdi.Accessor](c, "modules.users")
//	svc, _ := users.Lookup("services.main") // same instance as Resolve("modules.users.services.main")
//
// # Modules
//
// RegisterModules mounts each ModuleDescriptor under "modules.<name>", then
// registers a "modules" accessor and "modules.meta". BuildCatalog produces the
// descriptors from manifest entries and compiled-in definitions.
//
// # Errors
//
// Errors are typed and unwrap to sentinel values:
//
//	_, err := c.Resolve("missing")
//	if errors.Is(err, flowdi.ErrDependencyNotFound) {
//	    ...
//	}
//
//	var cycle *flowdi.CircularDependencyError
//	if errors.As(err, &cycle) {
//	    fmt.Println(cycle.Path)
//	}
//
// # Thread Safety
//
// All Container, Scope and Accessor methods are safe for concurrent use.
// Concurrent first resolutions of a singleton run its factory exactly once.
package flowdi
