package middleware

import (
	"context"
	"net/http"
	"strings"

	"kpitrack/internal/auth"
)

// UserContext is the authenticated caller attached to the request context.
// Department is empty for admins.
type UserContext struct {
	UserID     string
	Role       string
	Department string
}

// SessionChecker reports whether a token still has a live server-side
// session. A nil checker skips the lookup.
type SessionChecker interface {
	SessionValid(ctx context.Context, userID, token string) (bool, error)
}

// Auth parses a bearer token when present and, with a checker, rejects
// tokens whose session was revoked. Requests without a valid token continue
// anonymously; route-level guards decide whether that is allowed.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				valid, err := sessions.SessionValid(r.Context(), claims.UserID, parts[1])
				if err != nil || !valid {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID:     claims.UserID,
				Role:       claims.Role,
				Department: claims.Department,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}

// WithUser is used by handler tests to fabricate an authenticated context.
func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
