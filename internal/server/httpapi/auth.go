package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
)

const identityKey ctxKey = "identity"

// unauthenticatedBody is returned by the auth gate for every rejected token.
type unauthenticatedBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeUnauthenticated(w http.ResponseWriter, reason string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, unauthenticatedBody{Message: "Unauthenticated.", Error: reason})
}

// authenticate is the gate in front of every protected route. It validates
// the bearer token, rejects revoked ones and stores the caller's Identity in
// the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if token == "" {
			writeUnauthenticated(w, "token_absent")
			return
		}

		id, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				writeUnauthenticated(w, "token_expired")
			case errors.Is(err, common.ErrTokenRevoked):
				writeUnauthenticated(w, "token_revoked")
			case errors.Is(err, common.ErrInvalidToken):
				writeUnauthenticated(w, "token_invalid")
			default:
				s.serverError(w, r, "Failed to authenticate", err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller attached by the auth gate.
func IdentityFromContext(ctx context.Context) (services.Identity, bool) {
	id, ok := ctx.Value(identityKey).(services.Identity)
	return id, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], common.TokenType) {
		return ""
	}
	return parts[1]
}
