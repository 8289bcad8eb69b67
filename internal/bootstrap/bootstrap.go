// Package bootstrap assembles an application container: core services,
// shared infrastructure and the modules listed in the manifest.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/config"
	"github.com/flowra/flowdi/internal/manifest"
)

// Options controls Build.
type Options struct {
	Config      *config.Config
	Definitions map[string]flowdi.ModuleDefinition

	// Manifest overrides the manifest file named in Config.
	Manifest *manifest.Manifest
	// FallbackManifest is used when the configured manifest file does not exist.
	FallbackManifest *manifest.Manifest

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

// Build creates a container and runs RegisterCore, RegisterInfrastructure
// and RegisterModules on it, in that order.
func Build(opts Options) (*flowdi.Container, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := NewLogger(cfg.Log, out).With("app", cfg.AppName)

	containerOpts := []flowdi.Option{flowdi.WithLogger(logger)}
	if cfg.Strict {
		containerOpts = append(containerOpts, flowdi.WithStrictRegistration())
	}
	m, err := resolveManifest(cfg, opts)
	if err != nil {
		return nil, err
	}

	c := flowdi.New(containerOpts...)

	steps := []func() error{
		func() error { return RegisterCore(c, cfg, logger) },
		func() error { return RegisterInfrastructure(c) },
		func() error { return RegisterModules(c, m, opts.Definitions) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, errors.Join(err, c.Close())
		}
	}

	logger.Info("container.ready", "keys", c.Len(), "modules", len(m.Enabled()))
	return c, nil
}

// RegisterModules builds the catalog from the enabled manifest entries and
// mounts it.
func RegisterModules(c *flowdi.Container, m *manifest.Manifest, definitions map[string]flowdi.ModuleDefinition) error {
	descriptors, err := flowdi.BuildCatalog(m.Modules, definitions)
	if err != nil {
		return fmt.Errorf("build module catalog: %w", err)
	}

	if err := flowdi.RegisterModules(c, descriptors); err != nil {
		return fmt.Errorf("register modules: %w", err)
	}
	return nil
}

func resolveManifest(cfg *config.Config, opts Options) (*manifest.Manifest, error) {
	if opts.Manifest != nil {
		return opts.Manifest, nil
	}

	m, err := manifest.Load(cfg.Manifest)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, fs.ErrNotExist) && opts.FallbackManifest != nil {
		return opts.FallbackManifest, nil
	}
	return nil, fmt.Errorf("load manifest: %w", err)
}
