package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the session token in the browser.
const CookieName = "session"

type contextKey string

const (
	tokenContextKey   contextKey = "session_token"
	sessionContextKey contextKey = "session"
)

// TokenFromRequest extracts the token from the session cookie, falling back
// to an "Authorization: Bearer" header for API clients.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// WithToken stores the caller's token in ctx for Guard.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// FromContext returns the session attached by RequireSession.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok
}

// Guard checks the session whose token travels in the context.
type Guard struct {
	Manager *Manager
}

// CheckSession resolves the current session or returns ErrUnauthenticated.
func (g Guard) CheckSession(ctx context.Context) (*Session, error) {
	if g.Manager == nil {
		return nil, ErrUnauthenticated
	}
	return g.Manager.Current(ctx, TokenFromContext(ctx))
}

// RequireSession rejects requests without a valid session with 401 and
// attaches the session to the request context otherwise. An expired token
// answers "session_expired" so API clients know to log in again.
func RequireSession(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.Current(c.Request.Context(), TokenFromRequest(c.Request))
		if errors.Is(err, ErrExpiredToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_expired"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionContextKey, sess)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
