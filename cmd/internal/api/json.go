package api

import (
	"encoding/json"
	"io"
	"net/http"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: msg}})
}

// decodeBody parses the request body into T. A missing, oversized, or
// malformed body degrades to the zero value instead of failing: absent
// fields are caught by per-field validation, which produces a far more
// useful 400 than a generic parse error. The zero value is returned
// whole; a body that half-parses never leaks partial fields.
func decodeBody[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) T {
	var zero T
	if r == nil || r.Body == nil {
		return zero
	}
	defer func() { _ = r.Body.Close() }()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil || len(data) == 0 {
		return zero
	}

	var parsed T
	if err := json.Unmarshal(data, &parsed); err != nil {
		return zero
	}
	return parsed
}
