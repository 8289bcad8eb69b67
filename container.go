package flowdi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/flowra/flowdi/internal/graph"
)

// Container is a string-keyed registry of lazily built values.
//
// Keys are dot-joined paths such as "modules.users.services.main". Values are
// registered as constants, factories or Resolver descriptors and built on the
// first Resolve. Singletons are built at most once; transients on every call.
//
// A Container is safe for concurrent use.
type Container struct {
	id string

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // registration order, first registration wins the slot

	// In-flight singleton builds and the goroutines waiting on them.
	buildMu  sync.Mutex
	inflight map[*entry]*build
	waiting  map[uint64]*build
	buildSeq uint64

	graph     *graph.DependencyGraph
	lifecycle *lifecycleManager
	logger    *slog.Logger
	strict    bool
	closed    atomic.Bool
}

var _ Locator = (*Container)(nil)

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:        uuid.NewString(),
		entries:   make(map[string]*entry),
		inflight:  make(map[*entry]*build),
		waiting:   make(map[uint64]*build),
		graph:     graph.New(),
		lifecycle: newLifecycleManager(),
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.logger = c.logger.With(slog.String("container", c.id))
	return c
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id
}

// Register adds value under key.
//
// value may be a constant, a Factory (or func(Locator) any), a Resolver
// descriptor or a nested Registrations mapping, which is flattened into
// "key.child" entries. Registering an existing key replaces it unless the
// container is strict or Overwrite(false) is passed.
func (c *Container) Register(key string, value any, opts ...RegisterOption) error {
	k, err := ParseKey(key)
	if err != nil {
		return err
	}

	return c.register(k, value, newRegisterOptions(opts), nil)
}

// RegisterAll registers every top-level key of regs.
func (c *Container) RegisterAll(regs Registrations, opts ...RegisterOption) error {
	o := newRegisterOptions(opts)
	for _, name := range sortedNames(regs) {
		k, err := ParseKey(name)
		if err != nil {
			return err
		}
		if err := c.register(k, regs[name], o, nil); err != nil {
			return err
		}
	}
	return nil
}

// Alias registers alias as a singleton that resolves target.
// The alias caches the same instance the target does.
func (c *Container) Alias(alias, target string) error {
	if alias == "" || target == "" {
		return &AliasError{Alias: alias, Target: target}
	}

	ak, err := ParseKey(alias)
	if err != nil {
		return &AliasError{Alias: alias, Target: target, Cause: err}
	}
	if _, err := ParseKey(target); err != nil {
		return &AliasError{Alias: alias, Target: target, Cause: err}
	}

	e := newEntry(ak.String(), KindAlias, func(l Locator) (any, error) {
		return l.Resolve(target)
	}, Singleton)
	e.target = target

	if err := c.store(e, newRegisterOptions(nil)); err != nil {
		return err
	}

	c.logger.Debug("alias.registered", slog.String("alias", alias), slog.String("target", target))
	return nil
}

// register flattens nested mappings and stores leaves. record, when set, is
// told about every stored key.
func (c *Container) register(k Key, value any, o *registerOptions, record func(Key)) error {
	if nested, ok := asRegistrations(value); ok {
		for _, name := range sortedNames(nested) {
			child, err := ParseKey(name)
			if err != nil {
				return &RegistrationError{Key: k.String() + Separator + name, Operation: "register", Cause: err}
			}
			if err := c.register(k.Join(child), nested[name], o, record); err != nil {
				return err
			}
		}
		return nil
	}

	e, err := normalize(k.String(), value, o)
	if err != nil {
		return err
	}

	if err := c.store(e, o); err != nil {
		return err
	}

	if record != nil {
		record(k)
	}
	return nil
}

// store puts e into the registry, honoring the overwrite policy.
func (c *Container) store(e *entry, o *registerOptions) error {
	if c.closed.Load() {
		return &RegistrationError{Key: e.key, Operation: "register", Cause: ErrContainerClosed}
	}

	c.mu.Lock()
	_, exists := c.entries[e.key]
	if exists && !o.allowOverwrite(c.strict) {
		c.mu.Unlock()
		return &RegistrationError{Key: e.key, Operation: "register", Cause: ErrKeyExists}
	}
	c.entries[e.key] = e
	if !exists {
		c.order = append(c.order, e.key)
	}
	c.mu.Unlock()

	c.graph.AddNode(e.key, e.lifetime.String())
	if exists {
		c.graph.ResetEdges(e.key)
		c.logger.Debug("replaced", slog.String("key", e.key), slog.String("kind", e.kind.String()))
		return nil
	}

	c.logger.Debug("registered",
		slog.String("key", e.key),
		slog.String("kind", e.kind.String()),
		slog.String("lifetime", e.lifetime.String()),
	)
	return nil
}

// Resolve returns the value registered under key, building it if needed.
func (c *Container) Resolve(key string, opts ...ResolveOption) (any, error) {
	return c.resolve(nil, key, newResolveOptions(opts))
}

func (c *Container) resolve(parent *resolution, key string, o resolveOptions) (any, error) {
	if c.closed.Load() {
		return nil, ErrContainerClosed
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		if o.allowUnregistered {
			return nil, nil
		}
		return nil, &ResolutionError{Key: key, Cause: ErrDependencyNotFound, Available: c.Keys()}
	}

	if parent != nil {
		parent.depend(key)
	}

	if e.lifetime == Singleton && e.built.Load() {
		return bindAccessor(e.instance, parent), nil
	}

	if path := parent.cycle(key); path != nil {
		return nil, &CircularDependencyError{Key: key, Path: path}
	}

	if e.lifetime == Transient {
		instance, err := c.construct(parent, e)
		if err != nil {
			return nil, err
		}
		return bindAccessor(detachAccessor(instance, c), parent), nil
	}

	instance, err := c.resolveSingleton(parent, e)
	if err != nil {
		return nil, err
	}
	return bindAccessor(instance, parent), nil
}

// build is a singleton construction in progress.
type build struct {
	e    *entry
	gid  uint64
	seq  uint64
	done chan struct{}
}

// resolveSingleton returns the cached instance of e or builds it. A caller
// that finds e under construction waits for the builder, unless waiting
// could never end: the builder is the caller's own goroutine, or it is
// waiting, directly or through other builders, on a build the caller owns.
// Those cases are cycles and fail with CircularDependencyError.
func (c *Container) resolveSingleton(parent *resolution, e *entry) (any, error) {
	for {
		gid := goroutineID()

		c.buildMu.Lock()
		if e.built.Load() {
			c.buildMu.Unlock()
			return e.instance, nil
		}

		b, busy := c.inflight[e]
		if !busy {
			return c.buildSingleton(parent, e, gid)
		}

		if path := c.waitCycle(e, gid); path != nil {
			c.buildMu.Unlock()
			return nil, &CircularDependencyError{Key: e.key, Path: path}
		}

		c.waiting[gid] = b
		c.buildMu.Unlock()

		<-b.done

		c.buildMu.Lock()
		delete(c.waiting, gid)
		c.buildMu.Unlock()
	}
}

// buildSingleton runs the factory of e and caches the result. It is entered with
// buildMu held and releases it while the factory runs.
func (c *Container) buildSingleton(parent *resolution, e *entry, gid uint64) (any, error) {
	c.buildSeq++
	b := &build{e: e, gid: gid, seq: c.buildSeq, done: make(chan struct{})}
	c.inflight[e] = b
	c.buildMu.Unlock()

	instance, err := c.construct(parent, e)
	if err == nil {
		instance = detachAccessor(instance, c)
	}

	c.buildMu.Lock()
	if err == nil {
		e.instance = instance
		e.built.Store(true)
	}
	delete(c.inflight, e)
	close(b.done)
	c.buildMu.Unlock()

	if err != nil {
		return nil, err
	}

	c.lifecycle.track(e.key, instance)
	c.logger.Debug("singleton.constructed", slog.String("key", e.key))
	return instance, nil
}

// waitCycle returns the keys of a build cycle that waiting on e from
// goroutine gid would close, or nil when waiting is safe. Called with
// buildMu held.
func (c *Container) waitCycle(e *entry, gid uint64) []string {
	b := c.inflight[e]
	if b.gid == gid {
		return c.ownedSince(gid, b.seq)
	}

	path := []string{e.key}
	seen := map[uint64]bool{gid: true}
	for !seen[b.gid] {
		seen[b.gid] = true

		next, ok := c.waiting[b.gid]
		if !ok || c.inflight[next.e] != next {
			return nil
		}
		path = append(path, next.e.key)
		if next.gid == gid {
			return path
		}
		b = next
	}
	return nil
}

// ownedSince lists the keys goroutine gid started building at or after seq,
// in start order. Called with buildMu held.
func (c *Container) ownedSince(gid, seq uint64) []string {
	owned := make([]*build, 0, len(c.inflight))
	for _, b := range c.inflight {
		if b.gid == gid && b.seq >= seq {
			owned = append(owned, b)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].seq < owned[j].seq })

	keys := make([]string, len(owned))
	for i, b := range owned {
		keys[i] = b.e.key
	}
	return keys
}

// construct runs the entry factory with a resolution node appended to the
// chain and records the keys the factory resolved as graph edges.
func (c *Container) construct(parent *resolution, e *entry) (instance any, err error) {
	node := &resolution{c: c, parent: parent, key: e.key}
	defer func() {
		node.done.Store(true)
		c.graph.AddEdges(node.key, node.dependencies())
	}()

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &FactoryPanicError{Key: e.key, Panic: r, Stack: debug.Stack()}
		}
	}()

	instance, err = e.factory(node)
	if err != nil {
		if _, ok := err.(*CircularDependencyError); ok {
			return nil, err
		}
		return nil, &FactoryError{Key: e.key, Cause: err}
	}

	return instance, nil
}

// detachAccessor binds an accessor about to be cached or handed to a
// top-level caller to the container, so it holds no resolution chain.
func detachAccessor(v any, c *Container) any {
	if a, ok := v.(*Accessor); ok {
		return a.withLocator(c)
	}
	return v
}

// bindAccessor hands a factory a copy of an accessor that resolves through
// the factory's own chain, so fields reached through it take part in cycle
// detection. Top-level callers get the value unchanged.
func bindAccessor(v any, parent *resolution) any {
	if a, ok := v.(*Accessor); ok && parent != nil {
		return a.withLocator(parent)
	}
	return v
}

// Has reports whether key is registered. It never builds anything.
func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Keys returns every registered key in registration order.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of registered keys.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Describe returns metadata about key without resolving it.
func (c *Container) Describe(key string) (Registration, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Registration{}, false
	}
	return e.describe(), true
}

// Registrations describes every key in registration order.
func (c *Container) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Registration, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.entries[key].describe())
	}
	return out
}

// Cradle returns a read-only view over the container. Factories should use
// NewCradle with the Locator they receive instead.
func (c *Container) Cradle() *Cradle {
	return NewCradle(c)
}

// Dependencies returns the keys key was seen resolving.
// The graph only contains edges for factories that have run.
func (c *Container) Dependencies(key string) []string {
	return c.graph.GetDependencies(key)
}

// Dependents returns the keys seen resolving key, sorted.
func (c *Container) Dependents(key string) []string {
	return c.graph.GetDependents(key)
}

// TransitiveDependencies returns every key reachable from key in the
// observed graph, depth first.
func (c *Container) TransitiveDependencies(key string) []string {
	return c.graph.GetTransitiveDependencies(key)
}

// ResolutionOrder returns the observed keys with dependencies before their
// dependents. Keys that were never resolved by a factory still appear, with
// ties broken by key.
func (c *Container) ResolutionOrder() ([]string, error) {
	nodes, err := c.graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	return nodeKeys(nodes), nil
}

// CheckGraph reports the first cycle in the observed graph as a
// CircularDependencyError. Edges are recorded even when construction fails,
// so a cycle that Resolve rejected stays visible here.
func (c *Container) CheckGraph() error {
	return c.graph.DetectCycles()
}

// GraphSummary describes the shape of the observed dependency graph.
type GraphSummary struct {
	Nodes   int
	Roots   []string // nothing resolved them
	Leaves  []string // they resolved nothing
	Acyclic bool
}

// SummarizeGraph returns counts, roots and leaves of the observed graph.
func (c *Container) SummarizeGraph() GraphSummary {
	return GraphSummary{
		Nodes:   c.graph.Size(),
		Roots:   nodeKeys(c.graph.GetRoots()),
		Leaves:  nodeKeys(c.graph.GetLeaves()),
		Acyclic: c.graph.IsAcyclic(),
	}
}

// Depth returns how many dependency levels lie below key: 0 for keys that
// resolved nothing, -1 for keys on a cycle.
func (c *Container) Depth(key string) (int, bool) {
	c.graph.CalculateDepths()
	node, ok := c.graph.GetNode(key)
	if !ok {
		return 0, false
	}
	return node.Depth, true
}

func nodeKeys(nodes []*graph.Node) []string {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}

// GraphFormat selects the output of WriteGraph.
type GraphFormat string

const (
	GraphDOT       GraphFormat = "dot"
	GraphText      GraphFormat = "text"
	GraphAdjacency GraphFormat = "adjacency"
)

// WriteGraph renders the observed dependency graph.
func (c *Container) WriteGraph(w io.Writer, format GraphFormat) error {
	v := graph.NewVisualizer(c.graph)
	switch format {
	case GraphDOT:
		return v.WriteDOT(w)
	case GraphText, "":
		return v.WriteText(w)
	case GraphAdjacency:
		return v.WriteAdjacencyList(w)
	default:
		return fmt.Errorf("unknown graph format %q", format)
	}
}

// Close disposes constructed singletons in reverse construction order.
// After Close, Register and Resolve fail with ErrContainerClosed.
// Calling Close more than once is a no-op.
func (c *Container) Close() error {
	return c.CloseContext(context.Background())
}

// CloseContext is Close with a context handed to DisposableWithContext values.
func (c *Container) CloseContext(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := c.lifecycle.dispose(ctx)
	c.logger.Debug("container.closed", slog.Bool("clean", err == nil))
	return err
}

func sortedNames(regs Registrations) []string {
	names := make([]string, 0, len(regs))
	for name := range regs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
