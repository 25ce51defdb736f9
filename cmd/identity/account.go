package identity

// PhoneLength is the exact length of an account's phone, the unique
// identity key for the "users" namespace.
const PhoneLength = 11

// Account is the canonical account record, keyed by phone.
// PasswordDigest holds the keyed HMAC digest; the plaintext is never
// stored. CheckIDs is the back-reference list of owned check record
// ids, insertion order preserved.
type Account struct {
	FirstName      string   `cbor:"first_name"`
	LastName       string   `cbor:"last_name"`
	Phone          string   `cbor:"phone"`
	PasswordDigest string   `cbor:"password_digest"`
	TermsAccepted  bool     `cbor:"terms_accepted"`
	CheckIDs       []string `cbor:"check_ids"`
}

// HasCheck reports whether id is present in the account's check list.
func (a Account) HasCheck(id string) bool {
	for _, c := range a.CheckIDs {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveCheck removes id from the check list, preserving order.
// Returns false if the id was not present.
func (a *Account) RemoveCheck(id string) bool {
	for i, c := range a.CheckIDs {
		if c == id {
			a.CheckIDs = append(a.CheckIDs[:i], a.CheckIDs[i+1:]...)
			return true
		}
	}
	return false
}
