// Package demo contains the modules compiled into the flowdi CLI: users and
// welcome. They show how a module registers models, services and
// controllers in its scope and wires them by key.
package demo

import (
	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/manifest"
)

// Route maps a method and path to a controller action. Modules publish their
// routes as data; mounting them on a router is up to the host application.
type Route struct {
	Method     string
	Path       string
	Controller string // registry key
	Action     string
}

// Definitions returns the compiled-in modules keyed by their default path.
func Definitions() map[string]flowdi.ModuleDefinition {
	defs := []flowdi.ModuleDefinition{UsersModule(), WelcomeModule()}

	out := make(map[string]flowdi.ModuleDefinition, len(defs))
	for _, def := range defs {
		out[manifest.DefaultPath(def.Name)] = def
	}
	return out
}

// DefaultManifest enables every compiled-in module.
func DefaultManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Source: "<builtin>",
		Modules: []flowdi.ManifestEntry{
			{Name: "welcome", Path: manifest.DefaultPath("welcome"), Enabled: true, Description: "Landing page"},
			{Name: "users", Path: manifest.DefaultPath("users"), Enabled: true, Description: "User accounts"},
		},
	}
}
