package middleware

import (
	"errors"
	"net/http"

	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/pkg/session"
	"cariella/pkg/token"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys for the resolved session.
const (
	SessionKey   = "session"
	SessionIDKey = "session_id"
)

// LoadSession resolves the session cookie into session data on the Echo
// context. A missing or expired session is not an error here; the
// guards decide whether the request may proceed. When no session exists
// but a valid remember-me token cookie is present, the account is
// re-checked and a fresh session is established.
func LoadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			data, err := session.GetStore().Get(ctx, cookie.Value)
			if err == nil {
				c.Set(SessionKey, data)
				c.Set(SessionIDKey, cookie.Value)
				return next(c)
			}
			if !errors.Is(err, session.ErrNotFound) {
				logger.FromContext(c).Error("Session lookup failed", zap.Error(err))
			}
		}

		if data, id, ok := sessionFromRememberToken(c); ok {
			c.Set(SessionKey, data)
			c.Set(SessionIDKey, id)
		}

		return next(c)
	}
}

// sessionFromRememberToken re-establishes a session from the persistent
// remember-me cookie. The user row is re-checked so suspended or
// deleted accounts cannot ride an old token back in.
func sessionFromRememberToken(c echo.Context) (*session.Data, string, bool) {
	cookie, err := c.Cookie(token.RememberCookieName)
	if err != nil || cookie.Value == "" {
		return nil, "", false
	}

	claims, err := token.ValidateRememberToken(cookie.Value)
	if err != nil {
		return nil, "", false
	}

	var user model.User
	result := database.GetDB().Where("id = ? AND status = ?", claims.UserID, model.UserStatusActive).First(&user)
	if result.Error != nil {
		return nil, "", false
	}

	ctx := c.Request().Context()
	data := &session.Data{UserID: user.ID, UserType: user.UserType, LoggedIn: true}
	id := uuid.New().String()
	if err := session.GetStore().Save(ctx, id, data); err != nil {
		logger.FromContext(c).Error("Failed to restore session from remember token", zap.Error(err))
		return nil, "", false
	}

	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(session.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.FromContext(c).Info("Session restored from remember token", zap.Uint("user_id", user.ID))
	return data, id, true
}

// CurrentSession returns the session data placed on the context by
// LoadSession, if any.
func CurrentSession(c echo.Context) (*session.Data, bool) {
	data, ok := c.Get(SessionKey).(*session.Data)
	return data, ok
}

// RequireAuth denies the request unless a logged-in session is present.
// Mirrors the envelope contract: failures are HTTP 200 with success=false.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, ok := CurrentSession(c)
		if !ok || !data.LoggedIn {
			return c.JSON(http.StatusOK, echo.Map{
				"success":  false,
				"message":  "Authentication required. Please log in.",
				"redirect": "/auth/login",
			})
		}
		return next(c)
	}
}

// RequireRole denies the request unless the session's user type matches
// the expected role exactly. There is no role hierarchy.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, ok := CurrentSession(c)
			if !ok || data.UserType != role {
				return c.JSON(http.StatusOK, echo.Map{
					"success": false,
					"message": "You do not have permission to access this resource.",
				})
			}
			return next(c)
		}
	}
}
