package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/fleetctl/internal/app"
	"github.com/samvad-hq/fleetctl/pkg/fleet"
)

type (
	listFunc func(c *app.Commander, ctx context.Context) (*fleet.Response, error)
	getFunc  func(c *app.Commander, ctx context.Context, id string) (*fleet.Response, error)
)

// resourceCommand builds a `<name> list|get ID` command group.
func (s *session) resourceCommand(use, short string, list listFunc, get getFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	if list != nil {
		cmd.AddCommand(&cobra.Command{
			Use:   "list",
			Short: "List all " + use,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.call(cmd, func(ctx context.Context, c *app.Commander) (*fleet.Response, error) {
					return list(c, ctx)
				})
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show one of the " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.call(cmd, func(ctx context.Context, c *app.Commander) (*fleet.Response, error) {
				return get(c, ctx, args[0])
			})
		},
	})
	return cmd
}

func (s *session) orgsCommand() *cobra.Command {
	return s.resourceCommand("orgs", "Browse organizations",
		(*app.Commander).ListOrganizations, (*app.Commander).GetOrganization)
}

func (s *session) storesCommand() *cobra.Command {
	return s.resourceCommand("stores", "Browse stores",
		(*app.Commander).ListStores, (*app.Commander).GetStore)
}

func (s *session) playsCommand() *cobra.Command {
	return s.resourceCommand("plays", "Inspect play executions", nil, (*app.Commander).GetPlayExecution)
}
