package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/viewtube/internal/common"
	"github.com/dmitrijs2005/viewtube/internal/server/auth"
	"github.com/dmitrijs2005/viewtube/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// identityFrom returns the authenticated account attached by RequireAuth.
func identityFrom(ctx context.Context) (*models.AccountView, bool) {
	v, ok := ctx.Value(identityKey).(*models.AccountView)
	return v, ok
}

// accessTokenFrom extracts the access token from the accessToken cookie or,
// failing that, from an Authorization: Bearer header.
func accessTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

// RequireAuth authenticates the request with the access token, resolves the
// subject account, and attaches the sanitized identity to the request
// context. Access-token validity is self-contained: the guard does not
// consult the stored refresh value, so a logout does not revoke outstanding
// access tokens before they expire. The short access-token lifetime is the
// mitigation.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFrom(r)
		if token == "" {
			s.respondError(r.Context(), w, fmt.Errorf("%w: unauthorized request", common.ErrorUnauthorized))
			return
		}

		userID, err := s.codec.Verify(token, auth.KindAccess)
		if err != nil {
			s.respondError(r.Context(), w, err)
			return
		}

		account, err := s.sessions.GetAccount(r.Context(), userID)
		if err != nil {
			// A vanished subject means the token is stale; anything else
			// (store outage) keeps its own status rather than masquerading
			// as a credential failure.
			if errors.Is(err, common.ErrorNotFound) {
				err = fmt.Errorf("%w: invalid access token", common.ErrorUnauthorized)
			}
			s.respondError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, account)
		next(w, r.WithContext(ctx))
	}
}

// cors allows credentialed requests from the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == s.corsOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
