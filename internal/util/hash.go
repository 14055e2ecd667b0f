package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// DocumentHash returns the hex SHA-256 of a cleaned document. It keys the
// result cache, so equal text always maps to the same key.
func DocumentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 16 hex characters of DocumentHash, used in
// log lines.
func ShortHash(text string) string {
	return DocumentHash(text)[:16]
}
