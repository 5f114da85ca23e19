package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum computes a hex-encoded SHA-256 digest of data. Used as a
// content-addressed cache key: identical bytes always hash to the same key.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChecksumString computes a checksum of a string.
func ChecksumString(s string) string {
	return Checksum([]byte(s))
}

// ShortChecksum returns an 8-character prefix of a checksum for display.
func ShortChecksum(full string) string {
	if len(full) < 8 {
		return full
	}
	return full[:8]
}
