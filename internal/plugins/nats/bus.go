package nats

import (
	"context"
	"encoding/json"

	"github.com/AI-ZeeK/comms/internal/config"

	"github.com/nats-io/nats.go"
)

func NewConn(cfg config.NATSConfig) (*nats.Conn, error) {
	return nats.Connect(cfg.URL,
		nats.Timeout(cfg.ConnectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
}

// NatsEventBus publishes chat.<event> subjects for other services. Delivery
// is fire-and-forget; the caller logs failures and moves on.
type NatsEventBus struct {
	nc *nats.Conn
}

func NewNatsEventBus(nc *nats.Conn) *NatsEventBus {
	return &NatsEventBus{nc: nc}
}

func (b *NatsEventBus) Publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.nc.Publish(subject, data)
}
