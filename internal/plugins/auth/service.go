package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
	"github.com/tasktrackhq/tasktrack/internal/config"
	"github.com/tasktrackhq/tasktrack/internal/plugins/mailer"
)

// AuthService defines the business logic contract for the account lifecycle.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*User, error)
	ConfirmEmail(ctx context.Context, plainToken string) (token string, user *User, err error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	Logout(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) error

	// Authenticate verifies a bearer token and returns the live account it
	// belongs to. Every failure mode (bad signature, expiry, unknown
	// account, revoked session) collapses into the same unauthorized error.
	Authenticate(ctx context.Context, bearerToken string) (*User, error)
}

// authService implements AuthService with bcrypt hashing, stateless JWT
// sessions, and SHA-256-hashed one-time tokens.
type authService struct {
	repo    UserRepository
	mail    mailer.Sender
	tokens  *TokenIssuer
	baseURL string
	cfg     config.AuthConfig
}

// NewAuthService creates a new auth service with the given dependencies.
// baseURL is the public URL used to build confirmation and reset links.
func NewAuthService(repo UserRepository, sender mailer.Sender, tokens *TokenIssuer, baseURL string, cfg config.AuthConfig) AuthService {
	return &authService{
		repo:    repo,
		mail:    sender,
		tokens:  tokens,
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     cfg,
	}
}

// notAuthenticated is the single externally visible error for every
// protected-request failure. The internal cause is logged, never returned.
func notAuthenticated() *apperror.AppError {
	return apperror.NewUnauthorized("you are not logged in, please log in to get access")
}

// invalidCredentials is the unified login failure: unknown email and wrong
// password must be indistinguishable to prevent account enumeration.
func invalidCredentials() *apperror.AppError {
	return apperror.NewUnauthorized("incorrect email or password")
}

// normalizeEmail lowercases and trims an address so that lookups and the
// unique index agree on a canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new inactive account, stores the hash of a fresh
// confirmation token, and mails the plaintext token to the user. When the
// mail cannot be delivered the account would be permanently unconfirmable,
// so depending on configuration the account is force-activated instead
// (the original service always did this; here it is an explicit policy).
func (s *authService) Signup(ctx context.Context, input SignupInput) (*User, error) {
	role, err := validateSignupInput(&input)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	plainToken, tokenHash, err := generateSecretToken()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("generating confirm token: %w", err))
	}

	user := &User{
		ID:                    uuid.NewString(),
		FullName:              strings.TrimSpace(input.FullName),
		Email:                 normalizeEmail(input.Email),
		PasswordHash:          string(hash),
		Role:                  role,
		Active:                false,
		ConfirmEmailTokenHash: &tokenHash,
		CreatedAt:             time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.HasCode(err, 409) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	confirmURL := s.baseURL + "/confirmEmail/" + plainToken
	body := fmt.Sprintf(
		"Welcome to TaskTrack, %s!\n\nConfirm your email address by opening this link:\n\n%s\n",
		user.FullName, confirmURL,
	)

	if err := s.mail.Send(ctx, user.Email, "Confirm Email Address", body); err != nil {
		if !s.cfg.ActivateOnMailFailure {
			return nil, apperror.NewDeliveryFailed(err)
		}

		// Compensation: without the mail the account can never be
		// confirmed, so activate it immediately. This trades the
		// confirmation gate for usability and is controlled by
		// ACTIVATE_ON_MAIL_FAILURE.
		slog.Warn("confirmation mail failed, force-activating account",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		if err := s.repo.ForceActivate(ctx, user.ID); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("force-activating user: %w", err))
		}
		user.Active = true
		user.ConfirmEmailTokenHash = nil
	}

	return user, nil
}

// ConfirmEmail consumes a confirmation token: the matching account is
// activated, the stored hash cleared, and a session token issued. A token
// can succeed at most once; replays find no stored hash and fail.
func (s *authService) ConfirmEmail(ctx context.Context, plainToken string) (string, *User, error) {
	user, err := s.repo.ConsumeConfirmToken(ctx, hashSecretToken(plainToken))
	if err != nil {
		if apperror.HasCode(err, 404) {
			return "", nil, apperror.NewBadRequest("token is invalid")
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("consuming confirm token: %w", err))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	slog.Info("email confirmed",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// Login authenticates an account by email and password and issues a session
// token. Unknown email and wrong password return identical errors; the real
// cause is only logged.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	if input.Email == "" {
		return "", nil, apperror.NewValidation("email is required")
	}
	if input.Password == "" {
		return "", nil, apperror.NewValidation("password is required")
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperror.HasCode(err, 404) {
			slog.Warn("login failed", slog.String("reason", "unknown email"))
			return "", nil, invalidCredentials()
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		slog.Warn("login failed",
			slog.String("reason", "wrong password"),
			slog.String("user_id", user.ID),
		)
		return "", nil, invalidCredentials()
	}

	if !user.Active {
		return "", nil, apperror.NewUnauthorized("account inactive, check your email for the confirmation link")
	}

	if err := s.repo.SetLoggedOut(ctx, user.ID, false); err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("clearing logged_out: %w", err))
	}
	user.LoggedOut = false

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// Logout sets the revocation gate. Outstanding session tokens stay
// cryptographically valid but are rejected by Authenticate until the next
// login clears the flag.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetLoggedOut(ctx, userID, true); err != nil {
		if apperror.HasCode(err, 404) {
			return notAuthenticated()
		}
		return apperror.NewInternal(fmt.Errorf("setting logged_out: %w", err))
	}

	slog.Info("user logged out", slog.String("user_id", userID))
	return nil
}

// ForgotPassword stores the hash of a fresh reset token (with expiry) and
// mails the plaintext token. A failed delivery clears the pending token --
// there is no safe compensation for a reset secret that never arrived.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.HasCode(err, 404) {
			return apperror.NewNotFound("no account with that email address")
		}
		return apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	plainToken, tokenHash, err := generateSecretToken()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("generating reset token: %w", err))
	}

	expiresAt := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing reset token: %w", err))
	}

	resetURL := s.baseURL + "/resetPassword/" + plainToken
	body := fmt.Sprintf(
		"Forgot your password? Submit a request with your new password to:\n\n%s\n\nIf you didn't forget your password, please ignore this email.\n",
		resetURL,
	)
	subject := fmt.Sprintf("Your password reset token (valid for %s)", s.cfg.ResetTokenTTL)

	if err := s.mail.Send(ctx, user.Email, subject, body); err != nil {
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			slog.Error("failed to clear reset token after mail failure",
				slog.String("user_id", user.ID),
				slog.Any("error", clearErr),
			)
		}
		return apperror.NewDeliveryFailed(err)
	}

	slog.Info("password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// The token must match a stored hash whose expiry is still in the future;
// hash and expiry are cleared together on success.
func (s *authService) ResetPassword(ctx context.Context, plainToken, password, passwordConfirm string) error {
	if password == "" {
		return apperror.NewValidation("password is required")
	}
	if len(password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters")
	}
	if password != passwordConfirm {
		return apperror.NewValidation("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	if err := s.repo.ConsumeResetToken(ctx, hashSecretToken(plainToken), string(hash)); err != nil {
		if apperror.HasCode(err, 404) {
			return apperror.NewBadRequest("token is invalid or has expired")
		}
		return apperror.NewInternal(fmt.Errorf("consuming reset token: %w", err))
	}

	slog.Info("password reset completed")
	return nil
}

// Authenticate resolves a bearer token to a live account: valid signature,
// unexpired, account still exists, session not revoked. The distinct
// internal causes are logged for operators but the caller always gets the
// same unauthorized error.
func (s *authService) Authenticate(ctx context.Context, bearerToken string) (*User, error) {
	userID, err := s.tokens.Verify(bearerToken)
	if err != nil {
		slog.Debug("token verification failed", slog.Any("error", err))
		return nil, notAuthenticated()
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperror.HasCode(err, 404) {
			slog.Warn("token for nonexistent account", slog.String("user_id", userID))
			return nil, notAuthenticated()
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if user.LoggedOut {
		slog.Debug("rejected revoked session", slog.String("user_id", user.ID))
		return nil, notAuthenticated()
	}

	return user, nil
}

// validateSignupInput checks required fields and the password confirmation,
// returning the resolved role. Error messages name the offending field.
func validateSignupInput(input *SignupInput) (Role, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return "", apperror.NewValidation("fullName is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return "", apperror.NewValidation("email is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		return "", apperror.NewValidation("email is not a valid address")
	}
	if input.Password == "" {
		return "", apperror.NewValidation("password is required")
	}
	if len(input.Password) < 8 {
		return "", apperror.NewValidation("password must be at least 8 characters")
	}
	if len(input.Password) > 128 {
		return "", apperror.NewValidation("password must be at most 128 characters")
	}
	if input.Password != input.PasswordConfirm {
		return "", apperror.NewValidation("passwords do not match")
	}

	switch Role(input.Role) {
	case "":
		return RoleUser, nil
	case RoleUser, RoleAdmin:
		return Role(input.Role), nil
	default:
		return "", apperror.NewValidation("role must be 'user' or 'admin'")
	}
}
