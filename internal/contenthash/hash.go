// Package contenthash fingerprints chunk text for content addressing.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a hash string in characters.
const Size = sha256.Size * 2

// Hash returns the SHA-256 digest of text's UTF-8 bytes as lowercase hex.
// It is the dedup key for chunks: identical text always yields the same hash.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s looks like a value returned by Hash.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
