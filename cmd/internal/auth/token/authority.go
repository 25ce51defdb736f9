package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"uptime/cmd/identity/ids"
	"uptime/cmd/internal/storage"
)

// Token is the persisted bearer-token record.
type Token struct {
	ID        string    `cbor:"id" json:"id"`
	Phone     string    `cbor:"phone" json:"phone"`
	ExpiresAt time.Time `cbor:"expires_at" json:"expiresAt"`
}

// Active reports whether the token is unexpired at now.
func (t Token) Active(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// Authority issues, extends, verifies, and revokes bearer tokens.
type Authority struct {
	log   *slog.Logger
	cfg   Config
	store storage.Store
}

// NewAuthority constructs a token Authority over the given store.
func NewAuthority(log *slog.Logger, cfg Config, store storage.Store) (*Authority, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, fmt.Errorf("token: nil store")
	}
	if cfg.TTL <= 0 || cfg.IDLength <= 0 {
		return nil, ErrConfig
	}
	return &Authority{log: log, cfg: cfg, store: store}, nil
}

// Issue creates a new active token for phone with TTL from now.
// Callers are responsible for having verified the digest match first.
func (a *Authority) Issue(ctx context.Context, now time.Time, phone string) (Token, error) {
	id, err := ids.NewRecordID(a.cfg.IDLength)
	if err != nil {
		return Token{}, fmt.Errorf("token: generating id: %w", err)
	}

	t := Token{
		ID:        id,
		Phone:     phone,
		ExpiresAt: now.Add(a.cfg.TTL).UTC(),
	}
	if err := a.store.Create(ctx, storage.NamespaceTokens, t.ID, t); err != nil {
		return Token{}, fmt.Errorf("token: persisting %s: %w", t.ID, err)
	}
	return t, nil
}

// Get reads a token record by id. storage.ErrNotFound surfaces as
// ErrNotFound.
func (a *Authority) Get(ctx context.Context, id string) (Token, error) {
	var t Token
	if err := a.store.Read(ctx, storage.NamespaceTokens, id, &t); err != nil {
		if storage.IsNotFound(err) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	return t, nil
}

// Extend re-arms the token's expiry to now+TTL. Only an active token
// may be extended; an expired one fails with ErrAlreadyExpired and is
// left untouched.
func (a *Authority) Extend(ctx context.Context, now time.Time, id string) (Token, error) {
	t, err := a.Get(ctx, id)
	if err != nil {
		return Token{}, err
	}
	if !t.Active(now) {
		return Token{}, ErrAlreadyExpired
	}

	t.ExpiresAt = now.Add(a.cfg.TTL).UTC()
	if err := a.store.Update(ctx, storage.NamespaceTokens, t.ID, t); err != nil {
		return Token{}, fmt.Errorf("token: extending %s: %w", t.ID, err)
	}
	return t, nil
}

// Verify reports whether id names an active token owned by phone.
// Verification failure is modeled as false, never as an error: a
// missing, corrupt, mismatched, or expired token all look the same to
// the caller.
func (a *Authority) Verify(ctx context.Context, now time.Time, id, phone string) bool {
	if id == "" || phone == "" {
		return false
	}

	var t Token
	if err := a.store.Read(ctx, storage.NamespaceTokens, id, &t); err != nil {
		if !storage.IsNotFound(err) {
			a.log.Warn("token.verify.read_fail", "err", err)
		}
		return false
	}
	return t.Phone == phone && t.Active(now)
}

// Revoke deletes the token unconditionally if present.
func (a *Authority) Revoke(ctx context.Context, id string) error {
	if err := a.store.Delete(ctx, storage.NamespaceTokens, id); err != nil {
		if storage.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
