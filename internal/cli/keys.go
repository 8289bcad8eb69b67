package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newKeysCmd(opts *rootOptions) *cobra.Command {
	var (
		prefix  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List registered keys in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildContainer(cmd, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if !verbose {
				for key := range c.Cradle().All() {
					if strings.HasPrefix(key, prefix) {
						fmt.Fprintln(out, key)
					}
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tKIND\tLIFETIME\tTARGET")
			for _, r := range c.Registrations() {
				if !strings.HasPrefix(r.Key, prefix) {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Key, r.Kind, r.Lifetime, r.Target)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only keys starting with prefix")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show kind, lifetime and alias target")
	return cmd
}
