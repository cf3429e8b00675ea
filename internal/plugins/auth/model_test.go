package auth

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestUserJSON_NeverLeaksSecrets marshals a fully-populated account and
// checks that no server-side field reaches the wire. This guards the
// json:"-" tags on the model: a typo there would silently expose the
// password hash, the activation/revocation gates, or a token hash.
func TestUserJSON_NeverLeaksSecrets(t *testing.T) {
	confirmHash := "confirm-token-hash-value"
	resetHash := "reset-token-hash-value"
	expiry := time.Now().UTC().Add(10 * time.Minute)

	user := &User{
		ID:                     "user-1",
		FullName:               "Alice Example",
		Email:                  "alice@example.com",
		Role:                   RoleUser,
		CreatedAt:              time.Now().UTC(),
		PasswordHash:           "$2a$10$bcrypt-hash-value",
		Active:                 true,
		LoggedOut:              true,
		ConfirmEmailTokenHash:  &confirmHash,
		PasswordResetTokenHash: &resetHash,
		PasswordResetExpiresAt: &expiry,
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the public fields may appear as keys.
	var keys map[string]any
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	allowed := map[string]bool{
		"id": true, "fullName": true, "email": true, "role": true, "createdAt": true,
	}
	for key := range keys {
		if !allowed[key] {
			t.Errorf("unexpected key %q in user JSON: %s", key, raw)
		}
	}

	// The secret values themselves must not appear anywhere in the body.
	body := string(raw)
	for _, secret := range []string{
		"$2a$10$bcrypt-hash-value",
		confirmHash,
		resetHash,
		"password", "active", "logged",
	} {
		if strings.Contains(body, secret) {
			t.Errorf("user JSON contains %q: %s", secret, body)
		}
	}
}

// TestSessionResponseJSON_NeverLeaksSecrets checks the login/confirm
// response envelope: it carries the session token and the sanitized user,
// nothing from the stored credential columns.
func TestSessionResponseJSON_NeverLeaksSecrets(t *testing.T) {
	confirmHash := "confirm-token-hash-value"
	user := &User{
		ID:                    "user-1",
		FullName:              "Alice Example",
		Email:                 "alice@example.com",
		Role:                  RoleUser,
		PasswordHash:          "$2a$10$bcrypt-hash-value",
		Active:                true,
		ConfirmEmailTokenHash: &confirmHash,
	}

	raw, err := json.Marshal(newSessionResponse("session-jwt", user))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := string(raw)
	if !strings.Contains(body, `"token":"session-jwt"`) {
		t.Errorf("expected session token in response: %s", body)
	}
	for _, secret := range []string{
		"$2a$10$bcrypt-hash-value",
		confirmHash,
		"password", "active", "logged",
	} {
		if strings.Contains(body, secret) {
			t.Errorf("session response contains %q: %s", secret, body)
		}
	}
}
