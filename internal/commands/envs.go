package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/fleetctl/pkg/environments"
)

func (s *session) envsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List known fleet environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := environments.LoadRegistry(s.cfg.EnvironmentsFile)
			if err != nil {
				return fmt.Errorf("load environments: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBASE URL\tDESCRIPTION")
			for _, env := range reg.All() {
				marker := ""
				if env.Name == s.cfg.Environment {
					marker = " *"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\n", env.Name, marker, env.BaseURL, env.Description)
			}
			return tw.Flush()
		},
	}
}
