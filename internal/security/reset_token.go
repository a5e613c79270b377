package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken generates a password-reset token: the raw hex value goes out
// of band to the user, only the digest is stored server-side.
func NewResetToken() (raw string, digest string, err error) {
	buf := make([]byte, 32)

	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(buf)
	digest = HashResetToken(raw)
	return raw, digest, nil
}

// HashResetToken re-digests a presented raw token for lookup. The raw value
// is never persisted.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
