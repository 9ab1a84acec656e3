package auth

import (
	"net/http"
	"strings"

	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

// Middleware authenticates bearer tokens and enforces roles.
type Middleware struct {
	tokens *TokenIssuer
}

func NewMiddleware(tokens *TokenIssuer) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth admits requests carrying a valid access token and stores the
// actor in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			httpx.RespondError(w, ErrInvalidToken)
			return
		}
		claims, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithActor(r.Context(), shared.Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits actors holding one of roles.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, ErrInvalidToken)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

var _ shared.RoleGuard = (*Middleware)(nil)
