package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string   `cbor:"name"`
	Count int      `cbor:"count"`
	Tags  []string `cbor:"tags"`
}

func newTestStore(t *testing.T, opts ...Option) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), opts...)
	require.NoError(t, err)
	return fs
}

func TestCreateReadRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	in := testRecord{Name: "first", Count: 3, Tags: []string{"a", "b"}}
	require.NoError(t, fs.Create(ctx, NamespaceUsers, "01711111111", in))

	var out testRecord
	require.NoError(t, fs.Read(ctx, NamespaceUsers, "01711111111", &out))
	assert.Equal(t, in, out)
}

func TestCreateIsExclusive(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Create(ctx, NamespaceUsers, "k", testRecord{Name: "one"}))

	err := fs.Create(ctx, NamespaceUsers, "k", testRecord{Name: "two"})
	require.Error(t, err)
	assert.True(t, IsExists(err))

	// The loser must not have clobbered the winner.
	var out testRecord
	require.NoError(t, fs.Read(ctx, NamespaceUsers, "k", &out))
	assert.Equal(t, "one", out.Name)
}

func TestReadNotFound(t *testing.T) {
	fs := newTestStore(t)

	var out testRecord
	err := fs.Read(context.Background(), NamespaceTokens, "missing", &out)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUpdateReplacesFullContent(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Create(ctx, NamespaceChecks, "c1", testRecord{Name: "old", Count: 9, Tags: []string{"x"}}))
	require.NoError(t, fs.Update(ctx, NamespaceChecks, "c1", testRecord{Name: "new"}))

	var out testRecord
	require.NoError(t, fs.Read(ctx, NamespaceChecks, "c1", &out))
	assert.Equal(t, "new", out.Name)
	assert.Zero(t, out.Count)
	assert.Empty(t, out.Tags)
}

func TestUpdateNotFound(t *testing.T) {
	fs := newTestStore(t)

	err := fs.Update(context.Background(), NamespaceChecks, "absent", testRecord{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUpdateLeavesNoTempFiles(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Create(ctx, NamespaceUsers, "k", testRecord{Name: "a"}))
	require.NoError(t, fs.Update(ctx, NamespaceUsers, "k", testRecord{Name: "b"}))

	entries, err := os.ReadDir(filepath.Join(fs.Dir(), NamespaceUsers))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k"+recordExt, entries[0].Name())
}

func TestDelete(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Create(ctx, NamespaceTokens, "t1", testRecord{}))
	require.NoError(t, fs.Delete(ctx, NamespaceTokens, "t1"))

	var out testRecord
	assert.True(t, IsNotFound(fs.Read(ctx, NamespaceTokens, "t1", &out)))

	err := fs.Delete(ctx, NamespaceTokens, "t1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCorruptRecordIsHardError(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(fs.Dir(), NamespaceUsers, "bad"+recordExt)
	require.NoError(t, os.WriteFile(path, []byte("not valid cbor at all"), 0o600))

	var out testRecord
	err := fs.Read(ctx, NamespaceUsers, "bad", &out)
	require.Error(t, err)
	assert.True(t, IsCorrupt(err))

	var ce CorruptError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, NamespaceUsers, ce.Namespace)
	assert.Equal(t, "bad", ce.Key)
}

func TestInvalidKeysRejected(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	bad := []string{"", ".", "..", "a/b", `a\b`, ".hidden"}
	for _, key := range bad {
		err := fs.Create(ctx, NamespaceUsers, key, testRecord{})
		require.Error(t, err, "key %q", key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}

	err := fs.Create(ctx, "../escape", "k", testRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestObserverSeesEveryOp(t *testing.T) {
	type obs struct {
		op, ns string
		failed bool
	}
	var seen []obs

	fs := newTestStore(t, WithObserver(func(op, ns string, err error) {
		seen = append(seen, obs{op: op, ns: ns, failed: err != nil})
	}))
	ctx := context.Background()

	require.NoError(t, fs.Create(ctx, NamespaceUsers, "k", testRecord{}))
	var out testRecord
	require.NoError(t, fs.Read(ctx, NamespaceUsers, "k", &out))
	require.Error(t, fs.Delete(ctx, NamespaceUsers, "other"))

	require.Len(t, seen, 3)
	assert.Equal(t, obs{op: "create", ns: NamespaceUsers}, seen[0])
	assert.Equal(t, obs{op: "read", ns: NamespaceUsers}, seen[1])
	assert.Equal(t, obs{op: "delete", ns: NamespaceUsers, failed: true}, seen[2])
}

func TestCanceledContext(t *testing.T) {
	fs := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fs.Create(ctx, NamespaceUsers, "k", testRecord{})
	assert.ErrorIs(t, err, context.Canceled)
}
