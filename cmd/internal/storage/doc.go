// Package storage implements the namespaced, file-per-record store that
// backs every resource kind (users, tokens, checks).
//
// Each record lives at <dataDir>/<namespace>/<key>.cbor as a complete
// CBOR snapshot. Create relies on the filesystem's fail-if-exists open
// (O_EXCL), which is the only concurrency primitive in the system:
// concurrent creates of the same key resolve to exactly one winner.
// Update is an atomic replace (temp file + rename), so readers never
// observe a mix of old and new bytes. There is no locking beyond that;
// concurrent update/delete of the same key is an accepted race for this
// low-contention service.
package storage
