package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Hex returns the hex-encoded SHA-256 of s. Session tokens are stored under
// this digest so a leaked store does not yield usable cookies.
func SHA256Hex(s string) string {
	sum := SumSHA256([]byte(s))
	return hex.EncodeToString(sum[:])
}
