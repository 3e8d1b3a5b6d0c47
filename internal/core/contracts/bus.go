package contracts

import "context"

// EventBus publishes chat.<event> notifications for other services.
// Fire-and-forget: failures are logged by the caller, never retried here.
type EventBus interface {
	Publish(ctx context.Context, subject string, event any) error
}
