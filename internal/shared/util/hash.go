package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns the storage namespace of a user: 32 hex characters
// derived from the user ID, so raw IDs never appear in object keys.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte("user:" + userID))
	return hex.EncodeToString(sum[:16])
}
