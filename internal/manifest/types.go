package manifest

import (
	"strings"

	"github.com/flowra/flowdi"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// Manifest is a parsed and canonicalized module manifest.
type Manifest struct {
	Source  string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Modules []flowdi.ManifestEntry `json:"modules" yaml:"modules"`
}

// Enabled returns the entries whose enabled flag is set, in manifest order.
func (m *Manifest) Enabled() []flowdi.ManifestEntry {
	out := make([]flowdi.ManifestEntry, 0, len(m.Modules))
	for _, e := range m.Modules {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an entry by canonical name.
func (m *Manifest) Lookup(name string) (flowdi.ManifestEntry, bool) {
	name = KebabCase(name)
	for _, e := range m.Modules {
		if e.Name == name {
			return e, true
		}
	}
	return flowdi.ManifestEntry{}, false
}

// rawEntry is a manifest entry before canonicalization.
type rawEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Enabled     *bool  `json:"enabled"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ValidationIssue is a single schema violation.
type ValidationIssue struct {
	Path    string // instance location, e.g. "/modules/0/name"
	Message string
	Keyword string
}

// ValidationResult is the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationError is returned by Parse and Load for manifests that do not
// match the schema.
type ValidationError struct {
	Source string
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(printer.Sprintf("manifest %s has %d issue(s)", sourceName(e.Source), len(e.Issues)))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		if issue.Path != "" {
			b.WriteString(issue.Path)
			b.WriteString(": ")
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}

func sourceName(source string) string {
	if source == "" {
		return "<inline>"
	}
	return source
}
