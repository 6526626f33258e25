package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// secretLen is the entropy of a refresh secret in bytes (256 bits).
const secretLen = 32

// NewRefreshSecret generates a cryptographically random refresh secret,
// URL-safe base64 encoded. The raw value is handed to the client exactly once
// and only its digest is ever persisted.
func NewRefreshSecret() (string, error) {
	b := make([]byte, secretLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DigestSecret returns the SHA-256 digest of the raw secret, hex-encoded.
// Used for storing and looking up refresh secrets without storing the raw value.
func DigestSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// SecretDigestEqual performs constant-time comparison of the provided secret's
// digest with the stored digest. Returns true only if they match.
func SecretDigestEqual(providedSecret, storedDigest string) bool {
	providedDigest := DigestSecret(providedSecret)
	return subtle.ConstantTimeCompare([]byte(providedDigest), []byte(storedDigest)) == 1
}
