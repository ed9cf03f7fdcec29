package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Key builds a cache key from a namespace and a content hash.
// The key format is: namespace:hash
func Key(namespace, hash string) string {
	return fmt.Sprintf("%s:%s", namespace, hash)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashReader computes the SHA-256 hash of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
