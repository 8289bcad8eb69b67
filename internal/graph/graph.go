package graph

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// DependencyGraph records which registry keys were resolved while another key
// was being constructed. Edges point from the dependent to its dependency.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	edges map[string][]string

	// Cache for performance
	sortedNodes      []*Node
	sortedNodesDirty bool
}

// Node represents a registry key in the dependency graph
type Node struct {
	Key      string
	Lifetime string

	InDegree  int // number of dependents
	OutDegree int // number of dependencies
	Depth     int // depth in dependency tree

	Dependencies []string // keys this node resolved during construction
	Dependents   []string // keys that resolved this node during construction
}

// New creates an empty dependency graph
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes:            make(map[string]*Node),
		edges:            make(map[string][]string),
		sortedNodesDirty: true,
	}
}

// AddNode adds a node or updates the lifetime of an existing one.
func (g *DependencyGraph) AddNode(key, lifetime string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureNode(key).Lifetime = lifetime
	g.sortedNodesDirty = true
}

// AddEdge records that from depends on to. Duplicate edges are ignored.
func (g *DependencyGraph) AddEdge(from, to string) {
	if from == "" || to == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureNode(from)
	g.ensureNode(to)

	if slices.Contains(g.edges[from], to) {
		return
	}

	g.edges[from] = append(g.edges[from], to)
	g.updateDegrees()
	g.sortedNodesDirty = true
}

// AddEdges records that from depends on each of tos, in order, under a
// single lock.
func (g *DependencyGraph) AddEdges(from string, tos []string) {
	if from == "" || len(tos) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.ensureNode(from)
	added := false
	for _, to := range tos {
		if to == "" || slices.Contains(g.edges[from], to) {
			continue
		}
		g.ensureNode(to)
		g.edges[from] = append(g.edges[from], to)
		added = true
	}

	if added {
		g.updateDegrees()
		g.sortedNodesDirty = true
	}
}

// ResetEdges drops the outgoing edges of key, used when a registration is
// replaced and its dependencies are no longer known.
func (g *DependencyGraph) ResetEdges(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[key]; !exists {
		return
	}

	delete(g.edges, key)
	g.updateDegrees()
	g.sortedNodesDirty = true
}

func (g *DependencyGraph) ensureNode(key string) *Node {
	node, exists := g.nodes[key]
	if !exists {
		node = &Node{Key: key}
		g.nodes[key] = node
	}
	return node
}

// updateDegrees recalculates in/out degrees for all nodes
func (g *DependencyGraph) updateDegrees() {
	for _, node := range g.nodes {
		node.InDegree = 0
		node.OutDegree = 0
		node.Dependencies = nil
		node.Dependents = nil
	}

	for from, tos := range g.edges {
		fromNode, exists := g.nodes[from]
		if !exists {
			continue
		}

		fromNode.OutDegree = len(tos)
		fromNode.Dependencies = slices.Clone(tos)

		for _, to := range tos {
			if toNode, exists := g.nodes[to]; exists {
				toNode.InDegree++
				toNode.Dependents = append(toNode.Dependents, from)
			}
		}
	}

	for _, node := range g.nodes {
		sort.Strings(node.Dependents)
	}
}

// TopologicalSort returns nodes in dependency order (dependencies first).
// Ties are broken by key so the order is stable.
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.sortedNodesDirty && g.sortedNodes != nil {
		return slices.Clone(g.sortedNodes), nil
	}

	result, err := g.topologicalSortLocked()
	if err != nil {
		return nil, err
	}

	g.sortedNodes = result
	g.sortedNodesDirty = false

	return slices.Clone(result), nil
}

func (g *DependencyGraph) topologicalSortLocked() ([]*Node, error) {
	// Kahn's algorithm over "remaining dependencies"
	remaining := make(map[string]int, len(g.nodes))
	for key, node := range g.nodes {
		remaining[key] = node.OutDegree
	}

	queue := make([]string, 0)
	for key, count := range remaining {
		if count == 0 {
			queue = append(queue, key)
		}
	}
	sort.Strings(queue)

	result := make([]*Node, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.nodes[current]
		result = append(result, node)

		next := make([]string, 0)
		for _, dependent := range node.Dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("circular dependency detected: graph contains %d nodes but only %d could be sorted",
			len(g.nodes), len(result))
	}

	return result, nil
}

// DetectCycles checks if the graph contains any cycles
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	visited := make(map[string]bool)
	for _, key := range keys {
		if visited[key] {
			continue
		}
		if err := g.detectCyclesFrom(key, visited); err != nil {
			return err
		}
	}

	return nil
}

// detectCyclesFrom performs DFS cycle detection from a specific node
func (g *DependencyGraph) detectCyclesFrom(start string, visited map[string]bool) error {
	var path []string
	onPath := make(map[string]bool)

	var visit func(key string) error
	visit = func(key string) error {
		if onPath[key] {
			idx := slices.Index(path, key)
			return &CircularDependencyError{
				Key:  key,
				Path: slices.Clone(path[idx:]),
			}
		}
		if visited[key] {
			return nil
		}

		onPath[key] = true
		path = append(path, key)

		for _, dep := range g.edges[key] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(onPath, key)
		visited[key] = true
		return nil
	}

	return visit(start)
}

// GetDependencies returns the direct dependencies of a key
func (g *DependencyGraph) GetDependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return slices.Clone(g.edges[key])
}

// GetDependents returns keys that depend on the given key
func (g *DependencyGraph) GetDependents(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if node, exists := g.nodes[key]; exists {
		return slices.Clone(node.Dependents)
	}

	return nil
}

// GetTransitiveDependencies returns all dependencies (direct and indirect)
func (g *DependencyGraph) GetTransitiveDependencies(key string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{key: true}
	result := make([]string, 0)

	var collect func(current string)
	collect = func(current string) {
		for _, dep := range g.edges[current] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			result = append(result, dep)
			collect(dep)
		}
	}

	collect(key)
	return result
}

// GetNode returns a copy of the node for a given key
func (g *DependencyGraph) GetNode(key string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, exists := g.nodes[key]
	if !exists {
		return Node{}, false
	}
	return *node, true
}

// Size returns the number of nodes in the graph
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// IsAcyclic returns true if the graph has no cycles
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// GetRoots returns all nodes nothing depends on, sorted by key
func (g *DependencyGraph) GetRoots() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.filterNodes(func(n *Node) bool { return n.InDegree == 0 })
}

// GetLeaves returns all nodes without dependencies, sorted by key
func (g *DependencyGraph) GetLeaves() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.filterNodes(func(n *Node) bool { return n.OutDegree == 0 })
}

func (g *DependencyGraph) filterNodes(keep func(*Node) bool) []*Node {
	result := make([]*Node, 0)
	for _, node := range g.nodes {
		if keep(node) {
			result = append(result, node)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// CalculateDepths assigns depth levels: nodes without dependencies are at
// depth 0 and every dependent sits one level below its deepest dependency.
// Nodes on a cycle keep depth -1.
func (g *DependencyGraph) CalculateDepths() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calculateDepthsLocked()
}

func (g *DependencyGraph) calculateDepthsLocked() {
	for _, node := range g.nodes {
		node.Depth = -1
	}

	sorted, err := g.topologicalSortLocked()
	if err != nil {
		return
	}

	for _, node := range sorted {
		depth := 0
		for _, dep := range node.Dependencies {
			if d := g.nodes[dep].Depth + 1; d > depth {
				depth = d
			}
		}
		node.Depth = depth
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("Node{%s, in:%d, out:%d, depth:%d}",
		n.Key, n.InDegree, n.OutDegree, n.Depth)
}
