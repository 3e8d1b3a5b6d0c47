package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AI-ZeeK/comms/internal/config"
	"github.com/AI-ZeeK/comms/internal/core/domain"
)

func TestNotify(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/notifications" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(config.PushConfig{BaseURL: srv.URL, Timeout: time.Second})
	err := client.Notify(context.Background(), "user-1", "Ada", "hello", domain.NotificationData{
		EntityID:   "chat-1",
		EntityType: domain.NotifyNewMessage,
		SenderID:   "user-2",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got["user_id"] != "user-1" || got["title"] != "Ada" || got["body"] != "hello" {
		t.Fatalf("unexpected payload %v", got)
	}
	data, ok := got["data"].(map[string]any)
	if !ok || data["entity_type"] != string(domain.NotifyNewMessage) {
		t.Fatalf("unexpected data %v", got["data"])
	}
}

func TestNotifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(config.PushConfig{BaseURL: srv.URL, Timeout: time.Second})
	err := client.Notify(context.Background(), "user-1", "", "", domain.NotificationData{})
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestNotifySinkDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.PushConfig{BaseURL: srv.URL, Timeout: time.Second})
	err := client.Notify(context.Background(), "user-1", "", "", domain.NotificationData{})
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}
