// Package token implements the bearer-token authority.
//
// Tokens are opaque random 20-char ids persisted as records in the
// "tokens" namespace, each carrying its owning account's phone and an
// absolute expiry. A token is valid only while its expiry is strictly
// in the future; extension re-arms the TTL and is permitted only while
// still unexpired. Verification is a boolean contract: any read
// failure, owner mismatch, or expiry yields false, never an error.
//
// Transport integration is intentionally out of scope here.
package token
