package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Digest returns the hex-encoded SHA3-256 hash of data.
// Empty input yields an empty string rather than the hash of nothing.
func Digest(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
