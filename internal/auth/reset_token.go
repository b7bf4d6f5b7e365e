package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewResetToken returns a random reset token and the hash to store for it.
func NewResetToken() (token, hash string) {
	token = uuid.NewString()
	return token, HashResetToken(token)
}

// HashResetToken derives the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
