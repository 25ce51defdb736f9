// Package ids provides id primitives (record ids, ULIDs) used by the
// identity and storage layers.
package ids

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// RecordIDLength is the length of token and check record ids. The API
// layer validates incoming ids against exactly this length.
const RecordIDLength = 20

// recordIDAlphabet keeps record ids lowercase and filesystem-safe: they
// are used verbatim as storage keys.
const recordIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewRecordID returns a cryptographically random id of n characters
// drawn from the record id alphabet.
func NewRecordID(n int) (string, error) {
	if n <= 0 {
		n = RecordIDLength
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = recordIDAlphabet[int(b[i])%len(recordIDAlphabet)]
	}
	return string(b), nil
}

// NewULID returns a new ULID string (26 chars).
// ULIDs are lexicographically sortable and work well as request ids.
func NewULID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
