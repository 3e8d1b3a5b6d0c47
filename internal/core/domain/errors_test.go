package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{AuthenticationError("bad token"), KindAuthentication},
		{ErrNotParticipant, KindAuthorization},
		{ValidationError("invalid chat id %q", "x"), KindValidation},
		{ErrChatNotFound, KindNotFound},
		{UnavailableError(errors.New("dial tcp"), "redis down"), KindUnavailable},
		{errors.New("plain"), KindUnavailable},
		{fmt.Errorf("wrapped: %w", ErrMessageNotFound), KindNotFound},
	}
	for _, tc := range tests {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestSentinelMatching(t *testing.T) {
	err := UnavailableError(errors.New("timeout"), "presence store unreachable")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatal("expected kind sentinel match")
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Fatal("kinds must not cross-match")
	}

	wrapped := fmt.Errorf("join: %w", ErrNotParticipant)
	if !errors.Is(wrapped, ErrUnauthorized) {
		t.Fatal("expected wrapped sentinel match")
	}
}

func TestUnavailableErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := UnavailableError(cause, "message store unreachable")
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to unwrap")
	}
}
