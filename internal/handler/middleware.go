package handler

import (
	"context"
	"net/http"

	"orderdesk/internal/service"
	"orderdesk/models"
	"orderdesk/pkg/logger"
)

// SessionCookieName carries the login session token.
const SessionCookieName = "orderdesk_session"

type contextKey string

const userContextKey contextKey = "current_user"

// AuthMiddleware resolves the session cookie to a user and stores it in the
// request context. Requests without a valid session pass through anonymous;
// the access policy decides what they may do.
type AuthMiddleware struct {
	users  service.UserServiceInterface
	logger *logger.Logger
}

func NewAuthMiddleware(users service.UserServiceInterface, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		logger: log.WithComponent("auth_middleware"),
	}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			if user, err := m.users.CurrentUser(r.Context(), cookie.Value); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
			} else if err != models.ErrSessionNotFound {
				m.logger.Warn("Failed to resolve session", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
