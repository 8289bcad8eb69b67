package graph

import (
	"fmt"
	"strings"
)

// CircularDependencyError represents a key that was requested again while it
// was still being constructed.
type CircularDependencyError struct {
	Key  string
	Path []string
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		b.WriteString(fmt.Sprintf("    %s\n", e.Key))
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Key))
	} else {
		for i, key := range e.Path {
			b.WriteString(fmt.Sprintf("    %s\n", key))
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Key))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Resolve the dependency lazily inside a method instead of the factory\n")
	b.WriteString("  • Move the shared state into a third registration\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}
