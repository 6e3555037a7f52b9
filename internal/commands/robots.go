package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/fleetctl/internal/app"
	"github.com/samvad-hq/fleetctl/pkg/fleet"
)

func (s *session) robotsCommand() *cobra.Command {
	cmd := s.resourceCommand("robots", "Browse and command robots",
		(*app.Commander).ListRobots, (*app.Commander).GetRobot)

	cmd.AddCommand(s.robotVPNCommand())
	cmd.AddCommand(s.robotPowerCommand())
	cmd.AddCommand(s.robotVPNConfigCommand())
	return cmd
}

func (s *session) robotVPNCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vpn",
		Short: "Open or close a robot's VPN tunnel",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "open ID",
		Short: "Send open_vpn to a robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.call(cmd, func(ctx context.Context, c *app.Commander) (*fleet.Response, error) {
				return c.OpenVPN(ctx, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "close ID",
		Short: "Send close_vpn to a robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.call(cmd, func(ctx context.Context, c *app.Commander) (*fleet.Response, error) {
				return c.CloseVPN(ctx, args[0])
			})
		},
	})
	return cmd
}

func (s *session) robotPowerCommand() *cobra.Command {
	p := fleet.DefaultPowerControlParameters()

	cmd := &cobra.Command{
		Use:   "power ID",
		Short: "Send power_control to a robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []fleet.PowerOption{
				fleet.WithAction(p.Action),
				fleet.WithForce(p.Force),
				fleet.WithObjectID(p.ObjectID),
				fleet.WithResetDelay(p.ResetDelaySeconds),
				fleet.WithWaitBeforeCancel(p.WaitBeforeCancel),
				fleet.WithWaitBeforeForcedShutdown(p.WaitBeforeForcedShutdown),
			}
			return s.call(cmd, func(ctx context.Context, c *app.Commander) (*fleet.Response, error) {
				return c.PowerControl(ctx, args[0], opts...)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Action, "action", p.Action, "Power action")
	f.BoolVar(&p.Force, "force", p.Force, "Force the action")
	f.StringVar(&p.ObjectID, "object-id", p.ObjectID, "Target object")
	f.StringVar(&p.ResetDelaySeconds, "reset-delay", p.ResetDelaySeconds, "Seconds before reset")
	f.StringVar(&p.WaitBeforeCancel, "wait-before-cancel", p.WaitBeforeCancel, "Seconds before cancel")
	f.StringVar(&p.WaitBeforeForcedShutdown, "wait-before-forced-shutdown", p.WaitBeforeForcedShutdown, "Seconds before forced shutdown")
	return cmd
}

func (s *session) robotVPNConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vpn-config NAME",
		Short: "Print the VPN profile path for a robot name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.runtime(cmd.Context())
			if err != nil {
				return err
			}
			path, err := c.ResolveVPNConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
