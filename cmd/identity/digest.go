package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// MinDigestKeyBytes is the minimum recommended key length for the
// HMAC-SHA256 digest. Enforced in production by the app security policy.
const MinDigestKeyBytes = 32

// Hasher computes the keyed one-way digest stored in place of plaintext
// passwords. Equal secrets under the same key always produce equal
// digests, so a submitted password is checked by re-hashing and
// comparing, never by reversing anything.
type Hasher struct {
	key []byte
}

// NewHasher builds a Hasher from the configured secret key.
// The key is used as raw bytes; length policy is enforced at startup,
// not here, so staging profiles can run with a short dev key.
func NewHasher(key string) (*Hasher, error) {
	if key == "" {
		return nil, OpError{Op: "identity.NewHasher", Kind: ErrInvalidInput, Msg: "empty digest key"}
	}
	return &Hasher{key: []byte(key)}, nil
}

// Digest returns the HMAC-SHA256 hex digest of secret.
// An empty secret is rejected: hashing it would happily produce a valid
// digest and turn a missing password into a storable credential.
func (h *Hasher) Digest(secret string) (string, error) {
	if secret == "" {
		return "", OpError{Op: "identity.Digest", Kind: ErrInvalidInput, Msg: "empty secret"}
	}
	m := hmac.New(sha256.New, h.key)
	_, _ = m.Write([]byte(secret))
	return hex.EncodeToString(m.Sum(nil)), nil
}

// Matches reports whether secret digests to the stored value.
// Comparison is constant-time over the hex form.
func (h *Hasher) Matches(secret, stored string) bool {
	d, err := h.Digest(secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(d), []byte(stored))
}
