package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// MaxHashSize is the maximum number of bytes to hash from large
	// templates. Hashing only the first 1MB bounds memory while keeping
	// collision resistance adequate for integrity checks.
	MaxHashSize = 1024 * 1024 // 1MB
)

// HashTemplate computes the SHA-256 hash of the template text and returns
// it as a hex-encoded string. For templates exceeding MaxHashSize, only
// the first MaxHashSize bytes are hashed.
//
// Returns an empty string for an empty template.
func HashTemplate(template string) string {
	if len(template) == 0 {
		return ""
	}

	toHash := template
	if len(template) > MaxHashSize {
		toHash = template[:MaxHashSize]
	}

	hash := sha256.Sum256([]byte(toHash))
	return hex.EncodeToString(hash[:])
}
