package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// Handler handles HTTP requests for the account lifecycle. Handlers are
// thin: they bind the request, call the service, and shape the JSON
// response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// sessionResponse is the body returned whenever a session token is issued
// (login and email confirmation). The user struct strips its own secrets
// via json:"-" tags.
type sessionResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	Data   struct {
		User *User `json:"user"`
	} `json:"data"`
}

func newSessionResponse(token string, user *User) sessionResponse {
	resp := sessionResponse{Status: "success", Token: token}
	resp.Data.User = user
	return resp
}

// Signup registers a new account (POST /signup). The response carries the
// sanitized account but never a session token -- the user logs in after
// confirming their email.
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, err := h.service.Signup(c.Request().Context(), SignupInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"message": "sign up successful, please confirm your email",
		"data":    map[string]any{"user": user},
	})
}

// ConfirmEmail consumes an emailed confirmation token (GET /confirmEmail/:token)
// and logs the user in.
func (h *Handler) ConfirmEmail(c echo.Context) error {
	token, user, err := h.service.ConfirmEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionResponse(token, user))
}

// Login authenticates an account (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionResponse(token, user))
}

// Logout revokes the current session (GET /logout). Requires RequireAuth.
func (h *Handler) Logout(c echo.Context) error {
	userID := UserID(c)
	if userID == "" {
		return notAuthenticated()
	}

	if err := h.service.Logout(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "you have successfully logged out",
	})
}

// ForgotPassword issues a password-reset token (POST /forgotPassword).
func (h *Handler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.Email == "" {
		return apperror.NewValidation("email is required")
	}

	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "token sent to email",
	})
}

// ResetPassword consumes a reset token and sets the new password
// (POST /resetPassword/:token).
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	err := h.service.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "password successfully reset, proceed to login",
	})
}
