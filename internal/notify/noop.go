package notify

import (
	"context"

	"casegate/internal/request"
)

// Noop discards all lifecycle events. Used when no broker is configured.
type Noop struct{}

// RequestSubmitted implements the Notifier port and does nothing.
func (Noop) RequestSubmitted(context.Context, *request.ChangeRequest) error { return nil }

// RequestApproved implements the Notifier port and does nothing.
func (Noop) RequestApproved(context.Context, *request.ChangeRequest, request.ApplyResult) error {
	return nil
}
