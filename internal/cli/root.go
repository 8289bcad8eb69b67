// Package cli implements the flowdi inspection commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/bootstrap"
	"github.com/flowra/flowdi/internal/config"
	"github.com/flowra/flowdi/internal/demo"
)

type rootOptions struct {
	configFile string
	manifest   string
	strict     bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "flowdi",
		Short:   "Inspect a flowdi application container",
		Long:    `flowdi builds the application container from config and the module manifest, then lists, resolves or graphs what is registered.`,
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./flowdi.yaml if present)")
	root.PersistentFlags().StringVar(&opts.manifest, "manifest", "", "module manifest (yaml, json or hcl)")
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "fail on duplicate registrations")

	root.AddCommand(
		newKeysCmd(opts),
		newResolveCmd(opts),
		newModulesCmd(opts),
		newGraphCmd(opts),
	)
	return root
}

// Execute runs the CLI and reports errors on stderr.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// buildContainer loads config and assembles the container for one command.
func buildContainer(cmd *cobra.Command, opts *rootOptions) (*flowdi.Container, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.manifest != "" {
		cfg.Manifest = opts.manifest
	}
	if opts.strict {
		cfg.Strict = true
	}

	bopts := bootstrap.Options{
		Config:      cfg,
		Definitions: demo.Definitions(),
		LogOutput:   cmd.ErrOrStderr(),
	}
	// Only an explicitly requested manifest has to exist.
	if opts.manifest == "" {
		bopts.FallbackManifest = demo.DefaultManifest()
	}

	return bootstrap.Build(bopts)
}
