package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/models"
)

// Context keys for storing user session
type contextKey string

const sessionContextKey contextKey = "session"

// extractSessionFromRequest gets session ID from Authorization header or cookie
func extractSessionFromRequest(r *http.Request) string {
	_auth := r.Header.Get("Authorization")

	if strings.HasPrefix(_auth, "Bearer ") {
		return strings.TrimPrefix(_auth, "Bearer ")
	}

	cookie, err := r.Cookie("session_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// authMiddleware validates session and adds user context
func authMiddleware(sessionStore *auth.SessionStore) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID := extractSessionFromRequest(r)
			if sessionID == "" {
				http.Error(w, "Missing session token", http.StatusUnauthorized)
				return
			}

			session, exists := sessionStore.GetSession(sessionID)
			if !exists {
				http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// getSessionFromContext extracts session from request context
func getSessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
