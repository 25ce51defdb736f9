package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Namespaces for the three resource kinds.
const (
	NamespaceUsers  = "users"
	NamespaceTokens = "tokens"
	NamespaceChecks = "checks"
)

const recordExt = ".cbor"

// Store is the record persistence boundary consumed by the token
// authority and the resource handlers.
type Store interface {
	// Create persists a new record, failing with ErrExists if the key
	// is already present. This is the conflict detector callers rely on;
	// it must never degrade to read-then-write.
	Create(ctx context.Context, namespace, key string, record any) error

	// Read decodes the record into dst. ErrNotFound if absent,
	// CorruptError if the stored bytes cannot be decoded.
	Read(ctx context.Context, namespace, key string, dst any) error

	// Update replaces the full record content atomically.
	// ErrNotFound if the record does not exist.
	Update(ctx context.Context, namespace, key string, record any) error

	// Delete removes the record. ErrNotFound if absent.
	Delete(ctx context.Context, namespace, key string) error
}

// OpObserver is notified after every store operation. Used by the app
// layer to feed prometheus counters without the store importing them.
type OpObserver func(op, namespace string, err error)

// FileStore is the flat-file Store implementation.
type FileStore struct {
	dir     string
	observe OpObserver
}

// Option configures optional FileStore dependencies.
type Option func(*FileStore)

// WithObserver installs an operation observer.
func WithObserver(obs OpObserver) Option {
	return func(fs *FileStore) {
		if fs == nil || obs == nil {
			return
		}
		fs.observe = obs
	}
}

// NewFileStore creates a FileStore rooted at dir, creating the data
// directory and the well-known namespace directories up front so that
// first writes do not race on MkdirAll.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: empty data directory")
	}

	for _, ns := range []string{NamespaceUsers, NamespaceTokens, NamespaceChecks} {
		if err := os.MkdirAll(filepath.Join(dir, ns), 0o755); err != nil {
			return nil, fmt.Errorf("storage: creating namespace %s: %w", ns, err)
		}
	}

	fs := &FileStore{dir: dir, observe: func(string, string, error) {}}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(fs)
	}
	return fs, nil
}

// Dir returns the store's base directory.
func (fs *FileStore) Dir() string { return fs.dir }

func (fs *FileStore) Create(ctx context.Context, namespace, key string, record any) (err error) {
	defer func() { fs.observe("create", namespace, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	path, err := fs.recordPath(namespace, key)
	if err != nil {
		return err
	}

	data, err := encode(record)
	if err != nil {
		return fmt.Errorf("storage: encoding %s/%s: %w", namespace, key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: creating namespace dir: %w", err)
	}

	// O_EXCL makes the filesystem the arbiter between concurrent
	// creates: exactly one open succeeds.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s/%s: %w", namespace, key, ErrExists)
		}
		return fmt.Errorf("storage: creating %s/%s: %w", namespace, key, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("storage: writing %s/%s: %w", namespace, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("storage: closing %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (fs *FileStore) Read(ctx context.Context, namespace, key string, dst any) (err error) {
	defer func() { fs.observe("read", namespace, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	path, err := fs.recordPath(namespace, key)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
		}
		return fmt.Errorf("storage: reading %s/%s: %w", namespace, key, err)
	}

	if err := decode(data, dst); err != nil {
		return CorruptError{Namespace: namespace, Key: key, Err: err}
	}
	return nil
}

func (fs *FileStore) Update(ctx context.Context, namespace, key string, record any) (err error) {
	defer func() { fs.observe("update", namespace, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	path, err := fs.recordPath(namespace, key)
	if err != nil {
		return err
	}

	// Existence check first: Update must not create records. The gap
	// between this stat and the rename below is the documented
	// update/delete race; there is no per-key lock.
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
		}
		return fmt.Errorf("storage: stat %s/%s: %w", namespace, key, err)
	}

	data, err := encode(record)
	if err != nil {
		return fmt.Errorf("storage: encoding %s/%s: %w", namespace, key, err)
	}

	return fs.replaceFile(path, namespace, key, data)
}

func (fs *FileStore) Delete(ctx context.Context, namespace, key string) (err error) {
	defer func() { fs.observe("delete", namespace, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	path, err := fs.recordPath(namespace, key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", namespace, key, ErrNotFound)
		}
		return fmt.Errorf("storage: deleting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// replaceFile writes data to a temp file in the record's directory and
// renames it over the final path. A reader never observes a mix of old
// and new bytes, and a crash mid-write leaves the old record intact.
func (fs *FileStore) replaceFile(path, namespace, key string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+key+"-*"+recordExt)
	if err != nil {
		return fmt.Errorf("storage: creating temp file for %s/%s: %w", namespace, key, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: writing temp file for %s/%s: %w", namespace, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: closing temp file for %s/%s: %w", namespace, key, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("storage: replacing %s/%s: %w", namespace, key, err)
	}

	success = true
	return nil
}

func (fs *FileStore) recordPath(namespace, key string) (string, error) {
	if !validComponent(namespace) {
		return "", fmt.Errorf("namespace %q: %w", namespace, ErrInvalidKey)
	}
	if !validComponent(key) {
		return "", fmt.Errorf("key %q: %w", key, ErrInvalidKey)
	}
	return filepath.Join(fs.dir, namespace, key+recordExt), nil
}

// validComponent rejects anything that could escape the data directory
// or collide with temp files.
func validComponent(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return false
	}
	return !strings.HasPrefix(s, ".")
}
