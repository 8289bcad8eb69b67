package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.yaml.in/yaml/v3"

	"github.com/flowra/flowdi"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q in %s", filepath.Ext(path), path)
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	return Parse(data, format, path)
}

// Parse decodes, validates and canonicalizes a manifest.
//
// The document may be a list of entries, an object with a "modules" list, or
// an object of lists that are concatenated in key order.
func Parse(data []byte, format Format, source string) (*Manifest, error) {
	raw, err := decode(data, format, source)
	if err != nil {
		return nil, err
	}

	doc, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", sourceName(source), err)
	}

	result, err := Validate(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Source: source, Issues: result.Issues}
	}

	entries, err := toRawEntries(doc)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", sourceName(source), err)
	}

	m := &Manifest{Source: source, Modules: make([]flowdi.ManifestEntry, 0, len(entries))}
	seen := make(map[string]struct{}, len(entries))
	for i, r := range entries {
		entry, err := canonicalize(r, i)
		if err != nil {
			return nil, err
		}

		if entry.Name != "" {
			if _, dup := seen[entry.Name]; dup {
				return nil, &flowdi.ModuleError{Module: entry.Name, Cause: flowdi.ErrDuplicateModuleName}
			}
			seen[entry.Name] = struct{}{}
		}

		m.Modules = append(m.Modules, entry)
	}

	return m, nil
}

func decode(data []byte, format Format, source string) (any, error) {
	switch format {
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML manifest %s: %w", sourceName(source), err)
		}
		return raw, nil

	case FormatJSON:
		var raw any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing JSON manifest %s: %w", sourceName(source), err)
		}
		return raw, nil

	case FormatHCL:
		return decodeHCL(data, source)

	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
}

type hclDocument struct {
	Modules []*hclModule `hcl:"module,block"`
}

type hclModule struct {
	Name        string  `hcl:"name,label"`
	Path        *string `hcl:"path,optional"`
	Enabled     *bool   `hcl:"enabled,optional"`
	Description *string `hcl:"description,optional"`
	Version     *string `hcl:"version,optional"`
}

func decodeHCL(data []byte, source string) (any, error) {
	filename := source
	if filename == "" {
		filename = "manifest.hcl"
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL manifest %s: %w", filename, diags)
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, hclEvalContext(), &doc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL manifest %s: %w", filename, diags)
	}

	modules := make([]any, 0, len(doc.Modules))
	for _, m := range doc.Modules {
		entry := map[string]any{"name": m.Name}
		if m.Path != nil {
			entry["path"] = *m.Path
		}
		if m.Enabled != nil {
			entry["enabled"] = *m.Enabled
		}
		if m.Description != nil {
			entry["description"] = *m.Description
		}
		if m.Version != nil {
			entry["version"] = *m.Version
		}
		modules = append(modules, entry)
	}

	return map[string]any{"modules": modules}, nil
}

// hclEvalContext exposes the process environment as the env object, so a
// manifest can write enabled = env.FLOWDI_USERS != "off".
func hclEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !envVarName(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func envVarName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// normalize reduces the accepted shapes to {"modules": [...]}.
func normalize(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{"modules": []any{}}, nil

	case []any:
		return map[string]any{"modules": v}, nil

	case map[string]any:
		if _, ok := v["modules"]; ok {
			return v, nil
		}

		groups := make([]string, 0, len(v))
		for k := range v {
			groups = append(groups, k)
		}
		sort.Strings(groups)

		modules := []any{}
		for _, g := range groups {
			list, ok := v[g].([]any)
			if !ok {
				return nil, fmt.Errorf("group %q must be a list of modules", g)
			}
			modules = append(modules, list...)
		}
		return map[string]any{"modules": modules}, nil

	default:
		return nil, fmt.Errorf("expected a list of modules or an object, got %T", raw)
	}
}

func toRawEntries(doc map[string]any) ([]rawEntry, error) {
	data, err := json.Marshal(doc["modules"])
	if err != nil {
		return nil, fmt.Errorf("converting modules: %w", err)
	}

	var entries []rawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding modules: %w", err)
	}
	return entries, nil
}

// canonicalize applies naming, default path, enabled and version rules.
func canonicalize(r rawEntry, index int) (flowdi.ManifestEntry, error) {
	if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Path) == "" {
		return flowdi.ManifestEntry{}, &flowdi.ModuleError{
			Module: fmt.Sprintf("#%d", index),
			Cause:  flowdi.ErrMissingManifestName,
		}
	}

	entry := flowdi.ManifestEntry{
		Name:        KebabCase(r.Name),
		Path:        strings.TrimSpace(r.Path),
		Enabled:     r.Enabled == nil || *r.Enabled,
		Description: r.Description,
	}

	if entry.Path == "" {
		entry.Path = DefaultPath(entry.Name)
	}

	if r.Version != "" {
		v, err := semver.NewVersion(strings.TrimPrefix(r.Version, "v"))
		if err != nil {
			id := entry.Name
			if id == "" {
				id = entry.Path
			}
			return flowdi.ManifestEntry{}, &flowdi.ModuleError{
				Module: id,
				Cause:  fmt.Errorf("invalid version %q: %w", r.Version, err),
			}
		}
		entry.Version = v.String()
	}

	return entry, nil
}
