// Package sha256 provides content digests for archived pages.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the full hex SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortDigest returns the first 12 hex characters of the digest, used to
// keep archive object names readable while still distinguishing revisions.
func ShortDigest(data []byte) string {
	return Digest(data)[:12]
}
