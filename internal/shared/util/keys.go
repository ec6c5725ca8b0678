package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashUserKey returns the object-store namespace for a user ID. Raw ids such
// as "google:123" never appear in stored paths.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// OwnsKey reports whether an object key lives in ownerID's namespace.
func OwnsKey(ownerID, key string) bool {
	if strings.TrimSpace(ownerID) == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(key, "/"), HashUserKey(ownerID)+"/")
}
