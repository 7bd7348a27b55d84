package middleware

import (
	"net/http"
	"strings"

	"github.com/ptrack/fiscalia-backend/pkg/ctxutil"
)

// TokenValidator checks an access token and returns the user id and role
// it encodes.
type TokenValidator interface {
	ValidateToken(token string) (int64, string, error)
}

// Auth validates the bearer token when present and stores the acting user's
// id and role in the context. Requests without a token pass through
// anonymously; route guards decide whether that is acceptable.
func Auth(validator TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			userID, role, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithUserID(r.Context(), userID)
			ctx = ctxutil.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
