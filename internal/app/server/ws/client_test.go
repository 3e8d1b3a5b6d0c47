package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newSocketPair(t *testing.T) (*WebSocket, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	dial, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { dial.Close() })

	select {
	case conn := <-serverConns:
		return NewWebSocket(context.Background(), conn), dial
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the socket never arrived")
		return nil, nil
	}
}

func TestClientDeliversQueuedFrames(t *testing.T) {
	sock, dial := newSocketPair(t)
	client := NewClient(context.Background(), sock, "conn-1", "user-1")
	defer client.Close()

	payload := []byte(`{"event":"connected"}`)
	if err := client.Send(context.Background(), payload); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	dial.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := dial.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("delivered frame = %q, want %q", got, payload)
	}
}

func TestSendAfterCloseReturnsError(t *testing.T) {
	sock, _ := newSocketPair(t)
	client := NewClient(context.Background(), sock, "conn-1", "user-1")

	client.Close()

	if err := client.Send(context.Background(), []byte("x")); err == nil {
		t.Fatal("Send() after Close returned nil, want error")
	}
}

func TestCloseRacingSendDoesNotPanic(t *testing.T) {
	for i := 0; i < 25; i++ {
		sock, dial := newSocketPair(t)
		client := NewClient(context.Background(), sock, "conn-1", "user-1")

		// Drain the peer so queued writes never block on the socket.
		go func() {
			for {
				if _, _, err := dial.ReadMessage(); err != nil {
					return
				}
			}
		}()

		var wg sync.WaitGroup
		for g := 0; g < 100; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = client.Send(context.Background(), []byte(`{"event":"new_message"}`))
			}()
		}
		client.Close()
		wg.Wait()
	}
}
