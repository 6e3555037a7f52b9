package notifiers

import "context"

// Notifier sends command events to a downstream sink (HTTP, SQS, SNS, Pub/Sub).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt CommandEvent) error
}
