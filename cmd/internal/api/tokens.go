package api

import (
	"errors"
	"net/http"
	"strings"

	"uptime/cmd/identity"
	"uptime/cmd/internal/auth/token"
	"uptime/cmd/internal/storage"
)

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleTokenCreate(w, r)
	case http.MethodGet:
		h.handleTokenFetch(w, r)
	case http.MethodPut:
		h.handleTokenExtend(w, r)
	case http.MethodDelete:
		h.handleTokenRemove(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleTokenCreate is login: a matching (phone, password) pair mints a
// fresh one-hour token.
func (h *Handler) handleTokenCreate(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[tokenCreateRequest](w, r, h.cfg.MaxBodyBytes)

	phone := strings.TrimSpace(req.Phone)
	password := strings.TrimSpace(req.Password)

	if !validPhone(phone) {
		writeError(w, http.StatusBadRequest, "bad_request", "phone must be exactly 11 characters")
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "password is required")
		return
	}

	ctx := r.Context()

	var account identity.Account
	if err := h.store.Read(ctx, storage.NamespaceUsers, phone, &account); err != nil {
		if !storage.IsNotFound(err) {
			h.log.Error("token.create.read.fail", "err", err)
			serverError(w)
			return
		}
		// Same response as a bad password: login must not reveal which
		// phones exist.
		writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
		return
	}

	if !h.hasher.Matches(password, account.PasswordDigest) {
		writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
		return
	}

	t, err := h.tokens.Issue(ctx, h.now(), phone)
	if err != nil {
		h.log.Error("token.create.issue.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(t))
}

// handleTokenFetch is self-authenticating: possession of the 20-char id
// is the credential.
func (h *Handler) handleTokenFetch(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "token id must be exactly 20 characters")
		return
	}

	t, err := h.tokens.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "token not found")
			return
		}
		h.log.Error("token.fetch.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(t))
}

func (h *Handler) handleTokenExtend(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[tokenExtendRequest](w, r, h.cfg.MaxBodyBytes)

	id := strings.TrimSpace(req.ID)
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "token id must be exactly 20 characters")
		return
	}
	if !req.Extend {
		writeError(w, http.StatusBadRequest, "bad_request", "extend must be true")
		return
	}

	t, err := h.tokens.Extend(r.Context(), h.now(), id)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrAlreadyExpired):
			writeError(w, http.StatusBadRequest, "expired", "token already expired")
		case errors.Is(err, token.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "token not found")
		default:
			h.log.Error("token.extend.fail", "err", err)
			serverError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(t))
}

func (h *Handler) handleTokenRemove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "token id must be exactly 20 characters")
		return
	}

	if err := h.tokens.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "token not found")
			return
		}
		h.log.Error("token.remove.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "token deleted successfully"})
}
