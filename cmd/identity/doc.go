// Package identity implements the uptime service's identity foundation.
//
// It contains security primitives (keyed password digests, record id
// generation) and the typed error contract shared by the storage and
// HTTP layers.
//
// This package is intentionally dependency-light and security-first.
package identity
