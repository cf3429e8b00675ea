package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Signup, login, confirmation, and the password-reset pair are public; only
// logout requires an authenticated session. The RequireAuth middleware is
// exported separately for other plugins to guard their route groups.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
	e.GET("/confirmEmail/:token", h.ConfirmEmail)
	e.POST("/forgotPassword", h.ForgotPassword)
	e.POST("/resetPassword/:token", h.ResetPassword)

	e.GET("/logout", h.Logout, requireAuth)
}
