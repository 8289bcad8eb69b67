package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowra/flowdi"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		format  string
		order   bool
		check   bool
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Resolve every key and print the observed dependency graph",
		Long: `graph resolves every registered key so each factory runs once, then prints
the key-to-key edges seen during resolution.

--order prints the keys with dependencies first, --check fails when the graph
contains a cycle and --summary prints node, root and leaf counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			for _, key := range c.Keys() {
				if _, err := c.Resolve(key); err != nil {
					return fmt.Errorf("resolving %s: %w", key, err)
				}
			}

			out := cmd.OutOrStdout()
			switch {
			case check:
				if err := c.CheckGraph(); err != nil {
					return err
				}
				fmt.Fprintln(out, "no cycles")
				return nil

			case order:
				keys, err := c.ResolutionOrder()
				if err != nil {
					return err
				}
				for i, key := range keys {
					fmt.Fprintf(out, "%3d  %s\n", i+1, key)
				}
				return nil

			case summary:
				s := c.SummarizeGraph()
				fmt.Fprintf(out, "nodes:   %d\n", s.Nodes)
				fmt.Fprintf(out, "acyclic: %t\n", s.Acyclic)
				fmt.Fprintf(out, "roots:   %s\n", strings.Join(s.Roots, ", "))
				fmt.Fprintf(out, "leaves:  %s\n", strings.Join(s.Leaves, ", "))
				return nil
			}

			return c.WriteGraph(out, flowdi.GraphFormat(format))
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: dot, text or adjacency")
	cmd.Flags().BoolVar(&order, "order", false, "print keys in resolution order")
	cmd.Flags().BoolVar(&check, "check", false, "fail if the graph contains a cycle")
	cmd.Flags().BoolVar(&summary, "summary", false, "print graph statistics")
	cmd.MarkFlagsMutuallyExclusive("order", "check", "summary")
	return cmd
}
