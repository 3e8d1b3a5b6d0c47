package contracts

import (
	"context"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// NotificationSink is the out-of-band push transport, used only for
// recipients without presence in the conversation room.
type NotificationSink interface {
	Notify(ctx context.Context, userID, title, body string, data domain.NotificationData) error
}
