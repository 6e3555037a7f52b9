package notifiers

import (
	"time"

	"github.com/google/uuid"
)

// CommandEvent announces a robot command issued through fleetctl.
type CommandEvent struct {
	ID          string    `json:"id"`
	Environment string    `json:"environment"`
	RobotID     string    `json:"robot_id"`
	CommandType string    `json:"command_type"`
	Parameters  any       `json:"parameters,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	Error       string    `json:"error,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// NewCommandEvent constructs an event stamped with a fresh id and the current time.
func NewCommandEvent(environment, robotID, commandType string, params any) CommandEvent {
	return CommandEvent{
		ID:          uuid.NewString(),
		Environment: environment,
		RobotID:     robotID,
		CommandType: commandType,
		Parameters:  params,
		IssuedAt:    time.Now().UTC(),
	}
}

// attributes are attached to queue/topic messages for subscriber filtering.
func (e CommandEvent) attributes() map[string]string {
	return map[string]string{
		"robot_id":     e.RobotID,
		"command_type": e.CommandType,
	}
}
