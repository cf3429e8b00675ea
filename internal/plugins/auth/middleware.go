package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys for storing the authenticated identity in the Echo context.
// Other plugins use these keys (via the exported getter functions below)
// to access the authenticated user's information.
const (
	contextKeyUser   = "auth_user"
	contextKeyUserID = "auth_user_id"
)

// RequireAuth returns middleware that resolves the Authorization header to a
// live account and injects it into the request context. Missing header,
// malformed header, invalid or expired token, unknown account, and revoked
// session all produce the same 401 -- a caller probing the API learns
// nothing about which check failed.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return notAuthenticated()
			}

			user, err := service.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			// Store identity in context for downstream handlers.
			c.Set(contextKeyUser, user)
			c.Set(contextKeyUserID, user.ID)

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns empty string if the header is missing or malformed.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// --- Exported getters for other plugins ---

// CurrentUser retrieves the authenticated account from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func CurrentUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

// UserID retrieves the authenticated account's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func UserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
