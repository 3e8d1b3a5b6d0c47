package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AI-ZeeK/comms/internal/config"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

// Client talks to the external profile service that owns accounts. Validate
// is the handshake oracle; GetUser resolves display details for summaries.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.OracleConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type userPayload struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type validateResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *userPayload `json:"user"`
}

func (c *Client) Validate(ctx context.Context, token, role string) (*domain.Account, error) {
	body, _ := json.Marshal(map[string]string{"token": token, "role": role})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/accounts/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.UnavailableError(err, "account oracle unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, domain.UnavailableError(fmt.Errorf("status %d", resp.StatusCode), "account oracle unreachable")
	}
	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.UnavailableError(err, "account oracle returned malformed response")
	}
	if !out.Success || out.User == nil {
		msg := out.Message
		if msg == "" {
			msg = "account validation failed"
		}
		return nil, domain.AuthenticationError("%s", msg)
	}
	return toAccount(out.User)
}

func (c *Client) GetUser(ctx context.Context, userID string) (*domain.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.UnavailableError(err, "account oracle unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFoundError("user %s not found", userID)
	}
	if resp.StatusCode >= 400 {
		return nil, domain.UnavailableError(fmt.Errorf("status %d", resp.StatusCode), "account oracle unreachable")
	}
	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.UnavailableError(err, "account oracle returned malformed response")
	}
	if out.User == nil {
		return nil, domain.NotFoundError("user %s not found", userID)
	}
	return toAccount(out.User)
}

func toAccount(u *userPayload) (*domain.Account, error) {
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return nil, domain.AuthenticationError("malformed user id in oracle response")
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Email
	}
	return &domain.Account{
		UserID:      id,
		DisplayName: name,
		AvatarURL:   u.AvatarURL,
	}, nil
}
