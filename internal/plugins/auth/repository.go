package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// mysqlErrDuplicateEntry is the MySQL errno for a unique-index violation.
// The unique index on users.email is the arbitration point for concurrent
// signups: exactly one INSERT wins, the loser gets this errno.
const mysqlErrDuplicateEntry = 1062

// UserRepository defines the data access contract for account operations.
// All SQL lives in the concrete implementation -- no SQL leaks out. The
// one-time-token operations are single conditional statements so that
// racing consumers cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	SetLoggedOut(ctx context.Context, id string, loggedOut bool) error

	// Email confirmation.
	ConsumeConfirmToken(ctx context.Context, tokenHash string) (*User, error)
	ForceActivate(ctx context.Context, id string) error

	// Password reset.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) error
}

// userRepository implements UserRepository with hand-written MySQL queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// userColumns is the SELECT column list shared by the find queries.
const userColumns = `id, full_name, email, password_hash, role, active, logged_out,
	                 confirm_email_token_hash, password_reset_token_hash,
	                 password_reset_expires_at, created_at`

// scanUser scans a full user row from a QueryRow result.
func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.LoggedOut,
		&user.ConfirmEmailTokenHash,
		&user.PasswordResetTokenHash,
		&user.PasswordResetExpiresAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new account row. The email unique index resolves
// concurrent signups; a duplicate entry maps to a conflict error.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, full_name, email, password_hash, role, active,
	                             logged_out, confirm_email_token_hash, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.LoggedOut,
		user.ConfirmEmailTokenHash,
		user.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
			return apperror.NewConflict("an account with this email already exists")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByID retrieves an account by its UUID.
// Returns apperror.NotFound if no account exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves an account by its (already normalized) email address.
// Returns apperror.NotFound if no account exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

// SetLoggedOut flips the session-revocation gate for an account.
func (r *userRepository) SetLoggedOut(ctx context.Context, id string, loggedOut bool) error {
	query := `UPDATE users SET logged_out = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, loggedOut, id)
	if err != nil {
		return fmt.Errorf("updating logged_out: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		// RowsAffected is also 0 when the flag already holds the requested
		// value, so confirm the account is really missing.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
	}
	return nil
}

// ConsumeConfirmToken activates the account holding the given confirmation
// token hash and clears the hash in the same conditional UPDATE. The token
// is single-use by construction: a second attempt finds no matching row.
func (r *userRepository) ConsumeConfirmToken(ctx context.Context, tokenHash string) (*User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE confirm_email_token_hash = ?`, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("no account matches this token")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by confirm token: %w", err)
	}

	// The WHERE clause re-checks the hash so two concurrent confirmations
	// cannot both pass: the second UPDATE affects zero rows.
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET active = TRUE, confirm_email_token_hash = NULL, logged_out = FALSE
		 WHERE id = ? AND confirm_email_token_hash = ?`,
		user.ID, tokenHash,
	)
	if err != nil {
		return nil, fmt.Errorf("consuming confirm token: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, apperror.NewNotFound("no account matches this token")
	}

	user.Active = true
	user.LoggedOut = false
	user.ConfirmEmailTokenHash = nil
	return user, nil
}

// ForceActivate activates an account without consuming a confirmation token.
// Used only by the signup compensation path when the confirmation mail
// cannot be delivered.
func (r *userRepository) ForceActivate(ctx context.Context, id string) error {
	query := `UPDATE users SET active = TRUE, confirm_email_token_hash = NULL WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("force-activating user: %w", err)
	}
	return nil
}

// SetResetToken stores a password-reset token hash and its expiry in one
// statement -- the pair is never written independently.
func (r *userRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET password_reset_token_hash = ?, password_reset_expires_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt, id)
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// ClearResetToken removes a pending reset token and its expiry together.
// Called when the reset mail could not be delivered.
func (r *userRepository) ClearResetToken(ctx context.Context, id string) error {
	query := `UPDATE users SET password_reset_token_hash = NULL, password_reset_expires_at = NULL WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clearing reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken sets the new password hash and clears the reset token
// and expiry in a single conditional UPDATE. The expiry check happens in
// the WHERE clause, so a token that expired between lookup and write -- or
// one already consumed by a racing request -- affects zero rows.
func (r *userRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) error {
	query := `UPDATE users
	          SET password_hash = ?, password_reset_token_hash = NULL, password_reset_expires_at = NULL
	          WHERE password_reset_token_hash = ? AND password_reset_expires_at > UTC_TIMESTAMP()`

	result, err := r.db.ExecContext(ctx, query, passwordHash, tokenHash)
	if err != nil {
		return fmt.Errorf("consuming reset token: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("no account matches this token")
	}
	return nil
}
