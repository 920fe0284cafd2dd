package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString returns the hex-encoded SHA-256 of input
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// MaskPhone renders a phone number for logs: the last four digits and a
// short hash, so entries for one number can be correlated.
func MaskPhone(phone string) string {
	if phone == "" {
		return "<none>"
	}
	tail := phone
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return strings.Repeat("*", len(phone)-len(tail)) + tail + "#" + HashString(phone)[:8]
}
