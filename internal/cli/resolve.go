package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowra/flowdi"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <key>",
		Short: "Resolve a key and describe the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			key := args[0]
			v, err := c.Resolve(key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			reg, _ := c.Describe(key)
			fmt.Fprintf(out, "key:      %s\n", key)
			fmt.Fprintf(out, "kind:     %s\n", reg.Kind)
			fmt.Fprintf(out, "lifetime: %s\n", reg.Lifetime)
			fmt.Fprintf(out, "type:     %T\n", v)
			if deps := c.Dependencies(key); len(deps) > 0 {
				fmt.Fprintf(out, "uses:     %s\n", strings.Join(deps, ", "))
			}
			if depth, ok := c.Depth(key); ok {
				fmt.Fprintf(out, "depth:    %d\n", depth)
			}

			if a, ok := v.(*flowdi.Accessor); ok {
				fmt.Fprintf(out, "name:     %s\n", a.Name())
				fmt.Fprintln(out, "fields:")
				for _, f := range a.Fields() {
					k, _ := a.Key(f)
					fmt.Fprintf(out, "  %s -> %s\n", f, k)
				}
				return nil
			}

			fmt.Fprintf(out, "value:    %+v\n", v)
			return nil
		},
	}
}
