package token

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime/cmd/internal/storage"
)

func newTestAuthority(t *testing.T) *Authority {
	t.Helper()

	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := NewAuthority(log, DefaultConfig(), st)
	require.NoError(t, err)
	return a
}

func TestNewAuthorityValidation(t *testing.T) {
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewAuthority(nil, DefaultConfig(), nil)
	require.Error(t, err)

	_, err = NewAuthority(nil, Config{TTL: 0, IDLength: 20}, st)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewAuthority(nil, Config{TTL: time.Hour, IDLength: 0}, st)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestIssueAndVerify(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)
	assert.Len(t, tok.ID, DefaultConfig().IDLength)
	assert.Equal(t, "01711111111", tok.Phone)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)

	assert.True(t, a.Verify(ctx, now, tok.ID, "01711111111"))
	assert.False(t, a.Verify(ctx, now, tok.ID, "01722222222"), "wrong phone")
	assert.False(t, a.Verify(ctx, now, "nosuchtokenidxxxxxxx", "01711111111"), "unknown id")
	assert.False(t, a.Verify(ctx, now, "", "01711111111"))
	assert.False(t, a.Verify(ctx, now, tok.ID, ""))
}

func TestVerifyExpired(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)

	assert.True(t, a.Verify(ctx, now.Add(59*time.Minute), tok.ID, "01711111111"))
	assert.False(t, a.Verify(ctx, now.Add(time.Hour), tok.ID, "01711111111"), "expiry instant is inactive")
	assert.False(t, a.Verify(ctx, now.Add(2*time.Hour), tok.ID, "01711111111"))
}

func TestGet(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)

	got, err := a.Get(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)
	assert.Equal(t, tok.Phone, got.Phone)
	assert.WithinDuration(t, tok.ExpiresAt, got.ExpiresAt, 0)

	_, err = a.Get(ctx, "nosuchtokenidxxxxxxx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtendActiveToken(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)

	later := now.Add(30 * time.Minute)
	ext, err := a.Extend(ctx, later, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, later.Add(time.Hour), ext.ExpiresAt)

	got, err := a.Get(ctx, tok.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, ext.ExpiresAt, got.ExpiresAt, 0)
}

func TestExtendExpiredTokenIsRejected(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)

	_, err = a.Extend(ctx, now.Add(2*time.Hour), tok.ID)
	assert.ErrorIs(t, err, ErrAlreadyExpired)

	// The stored record must be untouched by the failed extension.
	got, err := a.Get(ctx, tok.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, tok.ExpiresAt, got.ExpiresAt, 0)
}

func TestExtendUnknownToken(t *testing.T) {
	a := newTestAuthority(t)

	_, err := a.Extend(context.Background(), time.Now().UTC(), "nosuchtokenidxxxxxxx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevoke(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok, err := a.Issue(ctx, now, "01711111111")
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, tok.ID))
	assert.False(t, a.Verify(ctx, now, tok.ID, "01711111111"))

	assert.ErrorIs(t, a.Revoke(ctx, tok.ID), ErrNotFound)
}
