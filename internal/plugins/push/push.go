package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AI-ZeeK/comms/internal/config"
	"github.com/AI-ZeeK/comms/internal/core/domain"
)

// Client hands notifications to the external push-delivery service, which
// owns subscriptions, VAPID keys and the actual web/mobile transports.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.PushConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Notify(ctx context.Context, userID, title, body string, data domain.NotificationData) error {
	payload, _ := json.Marshal(map[string]any{
		"user_id": userID,
		"title":   title,
		"body":    body,
		"data":    data,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/notifications", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.UnavailableError(err, "notification sink unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.UnavailableError(fmt.Errorf("status %d", resp.StatusCode), "notification sink rejected payload")
	}
	return nil
}
