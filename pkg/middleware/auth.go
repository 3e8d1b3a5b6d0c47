package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AI-ZeeK/comms/internal/core/domain"
)

type contextKey string

const AccountKey contextKey = "account"

// Authenticator resolves a handshake token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token, role string) (*domain.Account, error)
}

// AuthMiddleware authenticates the request and injects the resolved account
// into the context. The token comes from the Authorization header or, for
// websocket clients that cannot set headers, the access_token query parameter.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			role := r.URL.Query().Get("role")
			if role == "" {
				role = "user"
			}
			account, err := auth.Authenticate(r.Context(), token, role)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, domain.ErrUnavailable) {
					status = http.StatusServiceUnavailable
				}
				http.Error(w, err.Error(), status)
				return
			}
			ctx := context.WithValue(r.Context(), AccountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFrom extracts the authenticated account injected by AuthMiddleware.
func AccountFrom(ctx context.Context) (*domain.Account, bool) {
	account, ok := ctx.Value(AccountKey).(*domain.Account)
	return account, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
