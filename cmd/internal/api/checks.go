package api

import (
	"net/http"
	"strings"

	"uptime/cmd/identity"
	"uptime/cmd/identity/ids"
	"uptime/cmd/internal/storage"
)

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCheckCreate(w, r)
	case http.MethodGet:
		h.handleCheckFetch(w, r)
	case http.MethodPut:
		h.handleCheckUpdate(w, r)
	case http.MethodDelete:
		h.handleCheckRemove(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleCheckCreate(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[checkCreateRequest](w, r, h.cfg.MaxBodyBytes)

	protocol := strings.TrimSpace(req.Protocol)
	checkURL := strings.TrimSpace(req.URL)
	method := strings.TrimSpace(req.Method)

	switch {
	case !validProtocol(protocol):
		writeError(w, http.StatusBadRequest, "bad_request", "protocol must be http or https")
		return
	case checkURL == "":
		writeError(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	case !validCheckMethod(method):
		writeError(w, http.StatusBadRequest, "bad_request", "method must be one of GET, POST, PUT, DELETE")
		return
	case len(req.SuccessCodes) == 0:
		writeError(w, http.StatusBadRequest, "bad_request", "successCodes must be a non-empty list")
		return
	case req.TimeoutSeconds == nil || !validTimeout(*req.TimeoutSeconds):
		writeError(w, http.StatusBadRequest, "bad_request", "timeoutSeconds must be an integer between 1 and 5")
		return
	}

	ctx := r.Context()
	now := h.now()

	// The check's owner is the token's phone; an invalid or expired
	// token fails closed before any record is touched.
	t, err := h.tokens.Get(ctx, bearerToken(r))
	if err != nil || !t.Active(now) {
		forbidden(w)
		return
	}

	var owner identity.Account
	if err := h.store.Read(ctx, storage.NamespaceUsers, t.Phone, &owner); err != nil {
		forbidden(w)
		return
	}

	// Quota check-then-act: racy under concurrent creates by the same
	// account, bounded to a small transient overshoot.
	if len(owner.CheckIDs) >= h.cfg.MaxChecks {
		writeError(w, http.StatusBadRequest, "quota_exceeded", "account already has the maximum number of checks")
		return
	}

	id, err := ids.NewRecordID(ids.RecordIDLength)
	if err != nil {
		h.log.Error("check.create.id.fail", "err", err)
		serverError(w)
		return
	}

	check := Check{
		ID:             id,
		UserPhone:      t.Phone,
		Protocol:       protocol,
		URL:            checkURL,
		Method:         method,
		SuccessCodes:   req.SuccessCodes,
		TimeoutSeconds: *req.TimeoutSeconds,
	}

	if err := h.store.Create(ctx, storage.NamespaceChecks, id, check); err != nil {
		h.log.Error("check.create.fail", "err", err)
		serverError(w)
		return
	}

	owner.CheckIDs = append(owner.CheckIDs, id)
	if err := h.store.Update(ctx, storage.NamespaceUsers, t.Phone, owner); err != nil {
		h.log.Error("check.create.backref.fail", "err", err, "check_id", id)
		// Compensating action: drop the orphaned check record so the
		// failed request leaves no half-created state behind.
		if delErr := h.store.Delete(ctx, storage.NamespaceChecks, id); delErr != nil {
			h.log.Error("check.create.compensate.fail", "err", delErr, "check_id", id)
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toCheckResponse(check))
}

func (h *Handler) handleCheckFetch(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "check id must be exactly 20 characters")
		return
	}

	var check Check
	if err := h.store.Read(r.Context(), storage.NamespaceChecks, id, &check); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "check not found")
			return
		}
		h.log.Error("check.fetch.fail", "err", err)
		serverError(w)
		return
	}

	if !h.requireVerified(w, r, check.UserPhone) {
		return
	}

	writeJSON(w, http.StatusOK, toCheckResponse(check))
}

func (h *Handler) handleCheckUpdate(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[checkUpdateRequest](w, r, h.cfg.MaxBodyBytes)

	id := strings.TrimSpace(req.ID)
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "check id must be exactly 20 characters")
		return
	}

	if req.Protocol == nil && req.URL == nil && req.Method == nil &&
		req.SuccessCodes == nil && req.TimeoutSeconds == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "at least one updatable field is required")
		return
	}

	// Present fields must be valid; partial application never happens.
	switch {
	case req.Protocol != nil && !validProtocol(strings.TrimSpace(*req.Protocol)):
		writeError(w, http.StatusBadRequest, "bad_request", "protocol must be http or https")
		return
	case req.URL != nil && strings.TrimSpace(*req.URL) == "":
		writeError(w, http.StatusBadRequest, "bad_request", "url must be non-empty when present")
		return
	case req.Method != nil && !validCheckMethod(strings.TrimSpace(*req.Method)):
		writeError(w, http.StatusBadRequest, "bad_request", "method must be one of GET, POST, PUT, DELETE")
		return
	case req.SuccessCodes != nil && len(req.SuccessCodes) == 0:
		writeError(w, http.StatusBadRequest, "bad_request", "successCodes must be non-empty when present")
		return
	case req.TimeoutSeconds != nil && !validTimeout(*req.TimeoutSeconds):
		writeError(w, http.StatusBadRequest, "bad_request", "timeoutSeconds must be an integer between 1 and 5")
		return
	}

	ctx := r.Context()

	var check Check
	if err := h.store.Read(ctx, storage.NamespaceChecks, id, &check); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "check not found")
			return
		}
		h.log.Error("check.update.read.fail", "err", err)
		serverError(w)
		return
	}

	if !h.requireVerified(w, r, check.UserPhone) {
		return
	}

	if req.Protocol != nil {
		check.Protocol = strings.TrimSpace(*req.Protocol)
	}
	if req.URL != nil {
		check.URL = strings.TrimSpace(*req.URL)
	}
	if req.Method != nil {
		check.Method = strings.TrimSpace(*req.Method)
	}
	if req.SuccessCodes != nil {
		check.SuccessCodes = req.SuccessCodes
	}
	if req.TimeoutSeconds != nil {
		check.TimeoutSeconds = *req.TimeoutSeconds
	}

	if err := h.store.Update(ctx, storage.NamespaceChecks, id, check); err != nil {
		h.log.Error("check.update.fail", "err", err)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, toCheckResponse(check))
}

func (h *Handler) handleCheckRemove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if !validRecordID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "check id must be exactly 20 characters")
		return
	}

	ctx := r.Context()

	var check Check
	if err := h.store.Read(ctx, storage.NamespaceChecks, id, &check); err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "check not found")
			return
		}
		h.log.Error("check.remove.read.fail", "err", err)
		serverError(w)
		return
	}

	if !h.requireVerified(w, r, check.UserPhone) {
		return
	}

	if err := h.store.Delete(ctx, storage.NamespaceChecks, id); err != nil {
		h.log.Error("check.remove.fail", "err", err)
		serverError(w)
		return
	}

	// Second write: drop the back-reference from the owner. Not
	// transactional with the delete above; a failure here leaves a
	// dangling id and surfaces as 500 (documented limitation).
	var owner identity.Account
	if err := h.store.Read(ctx, storage.NamespaceUsers, check.UserPhone, &owner); err != nil {
		h.log.Error("check.remove.owner.read.fail", "err", err, "check_id", id)
		serverError(w)
		return
	}

	if !owner.RemoveCheck(id) {
		// The id was not in the owner's list: the back-reference
		// invariant was already broken. Loudly a server error, never a
		// silent success.
		h.log.Error("check.remove.backref.missing", "check_id", id, "phone", check.UserPhone)
		serverError(w)
		return
	}

	if err := h.store.Update(ctx, storage.NamespaceUsers, check.UserPhone, owner); err != nil {
		h.log.Error("check.remove.backref.fail", "err", err, "check_id", id)
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "check deleted successfully"})
}

// ---- field validation ----

func validProtocol(p string) bool {
	return p == "http" || p == "https"
}

func validCheckMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func validTimeout(seconds int) bool {
	return seconds >= 1 && seconds <= 5
}
