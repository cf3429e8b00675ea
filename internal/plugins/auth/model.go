// Package auth handles account lifecycle and session management for
// TaskTrack: signup with email confirmation, login/logout, password reset,
// and bearer-token verification. Session tokens are stateless signed JWTs;
// the logged_out flag on the account is the server-side revocation gate.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"time"
)

// Role classifies an account. There is no permission engine behind it --
// it is a single stored field, defaulting to RoleUser.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered TaskTrack account. This is the domain model
// used throughout the application. Database scanning and JSON marshaling use
// this struct directly; everything tagged "-" stays server-side only.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	PasswordHash string `json:"-"` // Never expose in JSON responses.

	// Active gates login: false until the email address is confirmed
	// (or force-activated when the confirmation mail cannot be sent).
	Active bool `json:"-"`

	// LoggedOut revokes sessions independently of token expiry. Checked on
	// every protected request.
	LoggedOut bool `json:"-"`

	// ConfirmEmailTokenHash is set only while Active is false; cleared the
	// moment the confirmation token is consumed.
	ConfirmEmailTokenHash *string `json:"-"`

	// PasswordResetTokenHash and PasswordResetExpiresAt are set and cleared
	// together, never independently.
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
}

// --- Request DTOs (bound from HTTP requests) ---

// SignupRequest holds the data submitted to POST /signup.
type SignupRequest struct {
	FullName        string `json:"fullName" form:"fullName"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
	Role            string `json:"role" form:"role"`
}

// LoginRequest holds the data submitted to POST /login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ForgotPasswordRequest holds the data submitted to POST /forgotPassword.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ResetPasswordRequest holds the data submitted to POST /resetPassword/:token.
type ResetPasswordRequest struct {
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
}

// --- Service Input DTOs (passed from handler to service) ---

// SignupInput is the input for creating a new account.
type SignupInput struct {
	FullName        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            string
}

// LoginInput is the input for authenticating an account.
type LoginInput struct {
	Email    string
	Password string
}
