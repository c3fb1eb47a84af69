package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateRefreshToken creates a cryptographically secure random token.
// The plain token goes to the client; only its hash is stored.
func GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// HashToken creates a SHA-256 hash of the token for storage in Redis.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// GenerateFamilyID identifies a chain of rotated refresh tokens so a replay
// can revoke the whole chain at once.
func GenerateFamilyID() string {
	return uuid.New().String()
}
