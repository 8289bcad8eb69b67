package flowdi

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scope registers values under a fixed prefix and, on Finalize, exposes them
// through lazily evaluated accessors.
//
//	scope, _ := c.CreateScope("modules.users")
//	_ = scope.Register(flowdi.Registrations{
//	    "services": flowdi.Registrations{"main": newUsersService},
//	})
//	_ = scope.Finalize()
//
//	// "modules.users.services.main", "modules.users.services" and
//	// "modules.users" now all resolve, the latter two to accessors.
type Scope struct {
	id     string
	c      *Container
	prefix Key

	mu        sync.Mutex
	finalized bool
	sections  []string                       // top-level relative segments, in order
	subpaths  map[string][]string            // section -> deeper relative paths, in order
	seen      map[string]map[string]struct{} // dedup for subpaths
}

// CreateScope returns a Scope bound to prefix. The prefix must be a valid,
// non-empty key.
func (c *Container) CreateScope(prefix string) (*Scope, error) {
	k, err := ParseKey(prefix)
	if err != nil {
		return nil, err
	}
	if c.closed.Load() {
		return nil, &RegistrationError{Key: prefix, Operation: "create scope", Cause: ErrContainerClosed}
	}

	return &Scope{
		id:       uuid.NewString(),
		c:        c,
		prefix:   k,
		subpaths: make(map[string][]string),
		seen:     make(map[string]map[string]struct{}),
	}, nil
}

// ID returns the unique identifier of the scope.
func (s *Scope) ID() string {
	return s.id
}

// Prefix returns the dot-joined prefix.
func (s *Scope) Prefix() string {
	return s.prefix.String()
}

// Name returns the last prefix segment.
func (s *Scope) Name() string {
	return s.prefix.Last()
}

// Container returns the container the scope writes to.
func (s *Scope) Container() *Container {
	return s.c
}

// Finalized reports whether Finalize has run.
func (s *Scope) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// Register registers regs under the scope prefix and records the sections
// they belong to. Nested mappings are flattened as in Container.Register.
func (s *Scope) Register(regs Registrations, opts ...RegisterOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return &RegistrationError{Key: s.prefix.String(), Operation: "register", Cause: ErrScopeFinalized}
	}

	o := newRegisterOptions(opts)
	for _, name := range sortedNames(regs) {
		rel, err := ParseKey(name)
		if err != nil {
			return &RegistrationError{Key: s.prefix.String() + Separator + name, Operation: "register", Cause: err}
		}
		if err := s.c.register(s.prefix.Join(rel), regs[name], o, s.record); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAlias registers the global key alias resolving prefix.target.
func (s *Scope) RegisterAlias(alias, target string) error {
	if alias == "" || target == "" {
		return &AliasError{Alias: alias, Target: target, Scope: s.prefix.String()}
	}

	err := s.c.Alias(alias, s.prefix.String()+Separator+target)
	if aErr, ok := err.(*AliasError); ok {
		aErr.Target = target
		aErr.Scope = s.prefix.String()
	}
	return err
}

// record notes k in the section bookkeeping. Callers hold s.mu.
func (s *Scope) record(k Key) {
	rel, ok := k.Relative(s.prefix)
	if !ok || rel.IsRoot() {
		return
	}

	segs := rel.Segments()
	section := segs[0]
	if _, ok := s.seen[section]; !ok {
		s.sections = append(s.sections, section)
		s.seen[section] = make(map[string]struct{})
	}
	if len(segs) == 1 {
		return
	}

	sub := strings.Join(segs[1:], Separator)
	if _, dup := s.seen[section][sub]; dup {
		return
	}
	s.seen[section][sub] = struct{}{}
	s.subpaths[section] = append(s.subpaths[section], sub)
}

// Finalize synthesizes accessors for what the scope registered:
//
//   - every section with sub-paths gets a singleton accessor at
//     prefix.section, unless that key is already registered;
//   - the prefix itself gets a root accessor with one field per section,
//     unless the prefix key is already registered.
//
// Fields are resolved lazily. Finalize discards the section bookkeeping and
// is idempotent; Register fails afterwards with ErrScopeFinalized.
func (s *Scope) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil
	}

	o := newRegisterOptions(nil)
	accessors := 0

	for _, section := range s.sections {
		subs := s.subpaths[section]
		sectionKey := s.prefix.Child(section)
		if len(subs) == 0 || s.c.Has(sectionKey.String()) {
			continue
		}

		name, fields := section, slices.Clone(subs)
		e := newEntry(sectionKey.String(), KindAccessor, func(l Locator) (any, error) {
			return newAccessor(name, sectionKey, fields, l), nil
		}, Singleton)
		if err := s.c.store(e, o); err != nil {
			return err
		}
		accessors++
	}

	if !s.c.Has(s.prefix.String()) {
		prefix, sections := s.prefix, slices.Clone(s.sections)
		e := newEntry(prefix.String(), KindAccessor, func(l Locator) (any, error) {
			present := make([]string, 0, len(sections))
			for _, section := range sections {
				if l.Has(prefix.Child(section).String()) {
					present = append(present, section)
				}
			}
			return newAccessor(prefix.Last(), prefix, present, l), nil
		}, Singleton)
		if err := s.c.store(e, o); err != nil {
			return err
		}
		accessors++
	}

	s.c.logger.Debug("scope.finalized",
		slog.String("scope", s.prefix.String()),
		slog.Int("sections", len(s.sections)),
		slog.Int("accessors", accessors),
	)

	s.finalized = true
	s.sections = nil
	s.subpaths = nil
	s.seen = nil
	return nil
}
