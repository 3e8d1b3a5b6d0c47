package contracts

import (
	"context"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// AccountOracle is the external identity service. Validate is called once per
// connection at handshake time; GetUser resolves display details for chat
// summaries.
type AccountOracle interface {
	Validate(ctx context.Context, token, role string) (*domain.Account, error)
	GetUser(ctx context.Context, userID string) (*domain.Account, error)
}
