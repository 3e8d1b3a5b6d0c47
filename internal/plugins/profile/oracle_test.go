package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AI-ZeeK/comms/internal/config"
	"github.com/AI-ZeeK/comms/internal/core/domain"

	"github.com/google/uuid"
)

func newTestClient(url string) *Client {
	return NewClient(config.OracleConfig{BaseURL: url, Timeout: time.Second})
}

func TestValidateSuccess(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/accounts/validate" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["token"] != "tok-123" || req["role"] != "user" {
			t.Fatalf("unexpected request body %v", req)
		}
		json.NewEncoder(w).Encode(validateResponse{
			Success: true,
			User: &userPayload{
				UserID:    userID.String(),
				FirstName: "Ada",
				LastName:  "Lovelace",
				Email:     "ada@example.com",
				AvatarURL: "https://cdn.example.com/ada.png",
			},
		})
	}))
	defer srv.Close()

	account, err := newTestClient(srv.URL).Validate(context.Background(), "tok-123", "user")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if account.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, account.UserID)
	}
	if account.DisplayName != "Ada Lovelace" {
		t.Fatalf("expected joined name, got %q", account.DisplayName)
	}
}

func TestValidateFallsBackToEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{
			Success: true,
			User:    &userPayload{UserID: uuid.New().String(), Email: "ada@example.com"},
		})
	}))
	defer srv.Close()

	account, err := newTestClient(srv.URL).Validate(context.Background(), "tok", "user")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if account.DisplayName != "ada@example.com" {
		t.Fatalf("expected email fallback, got %q", account.DisplayName)
	}
}

func TestValidateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{Success: false, Message: "token expired"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Validate(context.Background(), "tok", "user")
	if err == nil {
		t.Fatal("expected rejection")
	}
	if domain.KindOf(err) != domain.KindAuthentication {
		t.Fatalf("expected AUTHENTICATION, got %s", domain.KindOf(err))
	}
}

func TestValidateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Validate(context.Background(), "tok", "user")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestValidateOracleDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Validate(context.Background(), "tok", "user")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetUser(context.Background(), uuid.New().String())
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetUserSuccess(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/users/"+userID.String() {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(validateResponse{
			User: &userPayload{UserID: userID.String(), FirstName: "Bob"},
		})
	}))
	defer srv.Close()

	account, err := newTestClient(srv.URL).GetUser(context.Background(), userID.String())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if account.DisplayName != "Bob" {
		t.Fatalf("expected Bob, got %q", account.DisplayName)
	}
}
