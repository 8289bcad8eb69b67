package flowdi

// ModuleDefinition is the compiled-in half of a module: what it registers.
// The manifest decides whether and under which name it is mounted.
type ModuleDefinition struct {
	Name     string
	Register ModuleOption
	Routes   any
	Aliases  map[string]string
}

// BuildCatalog joins manifest entries with module definitions.
//
// Disabled entries are dropped. Each remaining entry is matched to a
// definition by Path first, then by Name. The module name is the entry name,
// or the definition name when the entry has none.
func BuildCatalog(entries []ManifestEntry, definitions map[string]ModuleDefinition) ([]ModuleDescriptor, error) {
	descriptors := make([]ModuleDescriptor, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}

		def, ok := definitions[entry.Path]
		if !ok || entry.Path == "" {
			def, ok = definitions[entry.Name]
		}
		if !ok {
			id := entry.Name
			if id == "" {
				id = entry.Path
			}
			return nil, &ModuleError{Module: id, Cause: ErrModuleNotDefined}
		}

		name := entry.Name
		if name == "" {
			name = def.Name
		}
		if name == "" {
			return nil, &ModuleError{Module: entry.Path, Cause: ErrMissingManifestName}
		}
		if _, dup := seen[name]; dup {
			return nil, &ModuleError{Module: name, Cause: ErrDuplicateModuleName}
		}
		seen[name] = struct{}{}

		descriptors = append(descriptors, ModuleDescriptor{
			Name:     name,
			Register: def.Register,
			Routes:   def.Routes,
			Aliases:  def.Aliases,
			Manifest: entry,
		})
	}

	return descriptors, nil
}
