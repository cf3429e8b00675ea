package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// secretTokenBytes is the number of random bytes in a one-time token.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const secretTokenBytes = 32

// generateSecretToken creates a one-time token. The plaintext goes to the
// user (in a confirmation or reset link) and is never stored; only the
// SHA-256 hash is persisted, so a database read never leaks a usable token.
func generateSecretToken() (plain, hash string, err error) {
	b := make([]byte, secretTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, hashSecretToken(plain), nil
}

// hashSecretToken re-derives the stored lookup key from a plaintext token
// presented back by a client.
func hashSecretToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
