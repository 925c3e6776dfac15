package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// PublicID returns the one-way digest form of a raw user identifier. Raw ids
// never cross the API boundary; membership checks stay on the raw form.
func PublicID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
