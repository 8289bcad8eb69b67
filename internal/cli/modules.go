package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/flowra/flowdi"
)

func newModulesCmd(opts *rootOptions) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List mounted modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			metas, err := flowdi.ModuleMetas(c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(metas); err != nil {
					return fmt.Errorf("encoding modules: %w", err)
				}
				return enc.Close()
			}

			names := make([]string, 0, len(metas))
			for name := range metas {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPATH\tVERSION\tROUTES\tDESCRIPTION")
			for _, name := range names {
				m := metas[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", name, m.Manifest.Path, m.Manifest.Version, m.HasRoutes, m.Manifest.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print module metadata as YAML")
	return cmd
}
