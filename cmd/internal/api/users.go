package api

import (
	"net/http"
	"strings"

	"uptime/cmd/identity"
	"uptime/cmd/internal/storage"
)

func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleUserCreate(w, r)
	case http.MethodGet:
		h.handleUserFetch(w, r)
	case http.MethodPut:
		h.handleUserUpdate(w, r)
	case http.MethodDelete:
		h.handleUserRemove(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[userCreateRequest](w, r, h.cfg.MaxBodyBytes)

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.Phone)
	password := strings.TrimSpace(req.Password)

	switch {
	case firstName == "":
		writeError(w, http.StatusBadRequest, "bad_request", "firstName is required")
		return
	case lastName == "":
		writeError(w, http.StatusBadRequest, "bad_request", "lastName is required")
		return
	case !validPhone(phone):
		writeError(w, http.StatusBadRequest, "bad_request", "phone must be exactly 11 characters")
		return
	case password == "":
		writeError(w, http.StatusBadRequest, "bad_request", "password is required")
		return
	case !req.TermsAccepted:
		writeError(w, http.StatusBadRequest, "bad_request", "termsAccepted must be true")
		return
	}

	ctx := r.Context()

	// Existence pre-check. This read-then-create is racy by itself; the
	// store's exclusive create below is the real conflict detector, so
	// the race degrades to one winner and one "already exists".
	var existing identity.Account
	if err := h.store.Read(ctx, storage.NamespaceUsers, phone, &existing); err == nil {
		writeError(w, http.StatusBadRequest, "already_exists", "user already exists")
		return
	}

	digest, err := h.hasher.Digest(password)
	if err != nil {
		h.log.Error("user.create.digest.fail", "err", err)
		serverError(w)
		return
	}

	account := identity.Account{
		FirstName:      firstName,
		LastName:       lastName,
		Phone:          phone,
		PasswordDigest: digest,
		TermsAccepted:  req.TermsAccepted,
		CheckIDs:       []string{},
	}

	if err := h.store.Create(ctx, storage.NamespaceUsers, phone, account); err != nil {
		if storage.IsExists(err) {
			writeError(w, http.StatusBadRequest, "already_exists", "user already exists")
			return
		}
		h.log.Error("user.create.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user created successfully"})
}

func (h *Handler) handleUserFetch(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if !validPhone(phone) {
		writeError(w, http.StatusBadRequest, "bad_request", "phone must be exactly 11 characters")
		return
	}

	if !h.requireVerified(w, r, phone) {
		return
	}

	var account identity.Account
	if err := h.store.Read(r.Context(), storage.NamespaceUsers, phone, &account); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("user.fetch.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[userUpdateRequest](w, r, h.cfg.MaxBodyBytes)

	phone := strings.TrimSpace(req.Phone)
	if !validPhone(phone) {
		writeError(w, http.StatusBadRequest, "bad_request", "phone must be exactly 11 characters")
		return
	}

	firstName, firstNameSet := trimmedField(req.FirstName)
	lastName, lastNameSet := trimmedField(req.LastName)
	password, passwordSet := trimmedField(req.Password)

	if !firstNameSet && !lastNameSet && !passwordSet {
		writeError(w, http.StatusBadRequest, "bad_request", "at least one of firstName, lastName, password is required")
		return
	}
	// Sent-but-blank fields are invalid, not ignored: validation never
	// partially applies.
	if (req.FirstName != nil && !firstNameSet) ||
		(req.LastName != nil && !lastNameSet) ||
		(req.Password != nil && !passwordSet) {
		writeError(w, http.StatusBadRequest, "bad_request", "fields must be non-empty when present")
		return
	}

	if !h.requireVerified(w, r, phone) {
		return
	}

	ctx := r.Context()

	var account identity.Account
	if err := h.store.Read(ctx, storage.NamespaceUsers, phone, &account); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("user.update.read.fail", "err", err)
		serverError(w)
		return
	}

	if firstNameSet {
		account.FirstName = firstName
	}
	if lastNameSet {
		account.LastName = lastName
	}
	if passwordSet {
		digest, err := h.hasher.Digest(password)
		if err != nil {
			h.log.Error("user.update.digest.fail", "err", err)
			serverError(w)
			return
		}
		account.PasswordDigest = digest
	}

	if err := h.store.Update(ctx, storage.NamespaceUsers, phone, account); err != nil {
		h.log.Error("user.update.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) handleUserRemove(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if !validPhone(phone) {
		writeError(w, http.StatusBadRequest, "bad_request", "phone must be exactly 11 characters")
		return
	}

	if !h.requireVerified(w, r, phone) {
		return
	}

	// No cascade: the account's tokens and checks are left behind.
	// Documented legacy behavior; see DESIGN.md.
	if err := h.store.Delete(r.Context(), storage.NamespaceUsers, phone); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("user.remove.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// trimmedField unwraps an optional request field. ok is true only when
// the field was present and non-blank after trimming.
func trimmedField(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}
