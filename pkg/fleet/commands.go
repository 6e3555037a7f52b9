package fleet

import "context"

// Robot command types understood by robots/{id}/commands.
const (
	CommandOpenVPN      = "open_vpn"
	CommandCloseVPN     = "close_vpn"
	CommandPowerControl = "power_control"
)

// Command is the JSON body posted to robots/{id}/commands.
type Command struct {
	Type       string `json:"command_type"`
	Parameters any    `json:"parameters"`
}

// PowerControlParameters are the parameters of a power_control command.
// The delay fields are strings on the wire.
type PowerControlParameters struct {
	Action                   string `json:"action"`
	Force                    bool   `json:"force"`
	ObjectID                 string `json:"object_id"`
	ResetDelaySeconds        string `json:"reset_delay_seconds"`
	WaitBeforeCancel         string `json:"wait_before_cancel"`
	WaitBeforeForcedShutdown string `json:"wait_before_forced_shutdown"`
}

// DefaultPowerControlParameters powers the robot off, forced, with the
// API's documented delays.
func DefaultPowerControlParameters() PowerControlParameters {
	return PowerControlParameters{
		Action:                   "off",
		Force:                    true,
		ObjectID:                 "robot",
		ResetDelaySeconds:        "30",
		WaitBeforeCancel:         "30",
		WaitBeforeForcedShutdown: "120",
	}
}

// PowerOption overrides one power_control parameter.
type PowerOption func(*PowerControlParameters)

func WithAction(action string) PowerOption {
	return func(p *PowerControlParameters) { p.Action = action }
}

func WithForce(force bool) PowerOption {
	return func(p *PowerControlParameters) { p.Force = force }
}

func WithObjectID(objectID string) PowerOption {
	return func(p *PowerControlParameters) { p.ObjectID = objectID }
}

func WithResetDelay(seconds string) PowerOption {
	return func(p *PowerControlParameters) { p.ResetDelaySeconds = seconds }
}

func WithWaitBeforeCancel(seconds string) PowerOption {
	return func(p *PowerControlParameters) { p.WaitBeforeCancel = seconds }
}

func WithWaitBeforeForcedShutdown(seconds string) PowerOption {
	return func(p *PowerControlParameters) { p.WaitBeforeForcedShutdown = seconds }
}

// OpenVPNCommand returns the open_vpn command.
func OpenVPNCommand() Command {
	return Command{Type: CommandOpenVPN, Parameters: map[string]any{}}
}

// CloseVPNCommand returns the close_vpn command.
func CloseVPNCommand() Command {
	return Command{Type: CommandCloseVPN, Parameters: map[string]any{}}
}

// PowerControlCommand returns a power_control command with defaults
// overridden by opts.
func PowerControlCommand(opts ...PowerOption) Command {
	params := DefaultPowerControlParameters()
	for _, opt := range opts {
		if opt != nil {
			opt(&params)
		}
	}
	return Command{Type: CommandPowerControl, Parameters: params}
}

// SendCommand posts cmd to robots/{robotID}/commands.
func (c *Client) SendCommand(ctx context.Context, robotID any, cmd Command) (*Response, error) {
	target, err := c.resourceURL(pathRobots, robotID, pathCommands)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: MethodPost, URL: target, JSON: cmd})
}

// OpenRobotVPN asks the robot to open its VPN tunnel.
func (c *Client) OpenRobotVPN(ctx context.Context, robotID any) (*Response, error) {
	return c.SendCommand(ctx, robotID, OpenVPNCommand())
}

// CloseRobotVPN asks the robot to close its VPN tunnel.
func (c *Client) CloseRobotVPN(ctx context.Context, robotID any) (*Response, error) {
	return c.SendCommand(ctx, robotID, CloseVPNCommand())
}

// PowerControlRobot sends power_control. With no options the robot is
// forced off after the default delays.
func (c *Client) PowerControlRobot(ctx context.Context, robotID any, opts ...PowerOption) (*Response, error) {
	return c.SendCommand(ctx, robotID, PowerControlCommand(opts...))
}
