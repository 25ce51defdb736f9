// Package api implements the HTTP resource protocols for accounts
// (/user), bearer tokens (/token), and check definitions (/check).
//
// Every handler follows the same pattern: validate shape, authenticate
// where the operation is protected, then load-mutate-store against the
// record store. Storage failures never propagate raw; they map to the
// error taxonomy (400/403/404/405/500).
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uptime/cmd/identity"
	"uptime/cmd/identity/ids"
	"uptime/cmd/internal/auth/token"
	"uptime/cmd/internal/storage"
)

// TokenHeader is the request header carrying the bearer token id.
const TokenHeader = "token"

// Handler wires the resource endpoints to the store, token authority,
// and digest hasher.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	store  storage.Store
	tokens *token.Authority
	hasher *identity.Hasher

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, cfg Config, store storage.Store, tokens *token.Authority, hasher *identity.Hasher) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, fmt.Errorf("api: nil store")
	}
	if tokens == nil {
		return nil, fmt.Errorf("api: nil token authority")
	}
	if hasher == nil {
		return nil, fmt.Errorf("api: nil hasher")
	}

	return &Handler{
		log:    log,
		cfg:    cfg.normalized(),
		store:  store,
		tokens: tokens,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register wires resource routes onto the provided mux, including the
// fixed fallback for unrecognized paths.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/user", h.handleUser)
	mux.HandleFunc("/token", h.handleToken)
	mux.HandleFunc("/check", h.handleCheck)
	mux.HandleFunc("/", h.handleNotFound)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "requested resource was not found")
}

// ---- shared helpers ----

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

func serverError(w http.ResponseWriter) {
	// Deliberately generic: storage details are logged, never returned.
	writeError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "forbidden", "authentication failed")
}

// bearerToken extracts the token id from the token header.
func bearerToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

// requireVerified authenticates the caller's token against the
// resource's owning phone. On failure it writes 403 and returns false.
func (h *Handler) requireVerified(w http.ResponseWriter, r *http.Request, phone string) bool {
	if !h.tokens.Verify(r.Context(), h.now(), bearerToken(r), phone) {
		forbidden(w)
		return false
	}
	return true
}

func validPhone(phone string) bool {
	return len(phone) == identity.PhoneLength
}

func validRecordID(id string) bool {
	return len(id) == ids.RecordIDLength
}
