package account

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// APIKeyPrefix marks keys issued by this service
const APIKeyPrefix = "sk_live_"

// GenerateAPIKey creates a new key and its hash
// Returns: (realKey, hash). Only the hash is ever stored.
func GenerateAPIKey() (string, string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	realKey := APIKeyPrefix + hex.EncodeToString(bytes)
	return realKey, HashAPIKey(realKey), nil
}

// HashAPIKey returns the sha256 hex digest stored for key
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
