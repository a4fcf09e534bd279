package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString returns the hex SHA-1 digest of s. It serves as the
// normalized event identity when the feed omits a guid or supplies one
// that cannot be stored verbatim; the digest is stable across re-fetches
// of the same entry.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
