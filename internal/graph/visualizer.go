package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format
func (v *Visualizer) WriteDOT(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	keys := v.sortedKeys()
	nodeIDs := make(map[string]string, len(keys))
	for i, key := range keys {
		node := v.graph.nodes[key]
		nodeID := fmt.Sprintf("n%d", i)
		nodeIDs[key] = nodeID

		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"%s\", style=filled];\n",
			nodeID, v.formatNodeLabel(node), v.getNodeColor(node))
	}

	for _, from := range keys {
		for _, to := range v.graph.edges[from] {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeIDs[from], nodeIDs[to])
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes a text representation of the graph grouped by depth
func (v *Visualizer) WriteText(w io.Writer) error {
	v.graph.mu.Lock()
	v.graph.calculateDepthsLocked()
	v.graph.mu.Unlock()

	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Dependency Graph:\n")
	b.WriteString("=================\n\n")

	depthGroups := make(map[int][]*Node)
	maxDepth := 0
	for _, key := range v.sortedKeys() {
		node := v.graph.nodes[key]
		depthGroups[node.Depth] = append(depthGroups[node.Depth], node)
		if node.Depth > maxDepth {
			maxDepth = node.Depth
		}
	}

	for depth := 0; depth <= maxDepth; depth++ {
		nodes, exists := depthGroups[depth]
		if !exists {
			continue
		}

		fmt.Fprintf(&b, "Level %d:\n", depth)
		b.WriteString("--------\n")
		for _, node := range nodes {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	// Depth stays -1 for nodes on a cycle
	if cycleNodes, exists := depthGroups[-1]; exists {
		b.WriteString("Nodes in Cycles:\n")
		b.WriteString("----------------\n")
		for _, node := range cycleNodes {
			v.writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	v.writeStatistics(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAdjacencyList writes the graph as an adjacency list
func (v *Visualizer) WriteAdjacencyList(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Adjacency List:\n")
	b.WriteString("===============\n\n")

	for _, from := range v.sortedKeys() {
		fmt.Fprintf(&b, "%s -> [%s]\n", from, strings.Join(v.graph.edges[from], ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (v *Visualizer) sortedKeys() []string {
	keys := make([]string, 0, len(v.graph.nodes))
	for key := range v.graph.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formatNodeLabel creates a label for a node
func (v *Visualizer) formatNodeLabel(node *Node) string {
	if node.Lifetime != "" {
		return fmt.Sprintf("%s\\n(%s)\\nIn:%d Out:%d",
			node.Key, node.Lifetime, node.InDegree, node.OutDegree)
	}

	return fmt.Sprintf("%s\\nIn:%d Out:%d", node.Key, node.InDegree, node.OutDegree)
}

// getNodeColor determines the color for a node based on its lifetime
func (v *Visualizer) getNodeColor(node *Node) string {
	switch node.Lifetime {
	case "":
		return "lightgray" // never registered
	case "Singleton":
		return "lightblue"
	case "Transient":
		return "lightyellow"
	default:
		return "white"
	}
}

// writeNodeDetails writes detailed information about a node
func (v *Visualizer) writeNodeDetails(b *strings.Builder, node *Node, indent string) {
	fmt.Fprintf(b, "%s%s\n", indent, node.Key)

	if node.Lifetime != "" {
		fmt.Fprintf(b, "%s  Lifetime: %s\n", indent, node.Lifetime)
	}

	if len(node.Dependencies) > 0 {
		fmt.Fprintf(b, "%s  Dependencies: [%s]\n", indent, strings.Join(node.Dependencies, ", "))
	}

	if len(node.Dependents) > 0 {
		fmt.Fprintf(b, "%s  Dependents: [%s]\n", indent, strings.Join(node.Dependents, ", "))
	}
}

// writeStatistics writes graph statistics
func (v *Visualizer) writeStatistics(b *strings.Builder) {
	b.WriteString("Statistics:\n")
	b.WriteString("-----------\n")
	fmt.Fprintf(b, "  Total nodes: %d\n", len(v.graph.nodes))
	fmt.Fprintf(b, "  Total edges: %d\n", v.countEdges())

	roots := v.graph.filterNodes(func(n *Node) bool { return n.InDegree == 0 })
	leaves := v.graph.filterNodes(func(n *Node) bool { return n.OutDegree == 0 })

	fmt.Fprintf(b, "  Root nodes (no dependents): %d\n", len(roots))
	fmt.Fprintf(b, "  Leaf nodes (no dependencies): %d\n", len(leaves))
}

// countEdges counts the total number of edges in the graph
func (v *Visualizer) countEdges() int {
	count := 0
	for _, edges := range v.graph.edges {
		count += len(edges)
	}
	return count
}
