package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fintrack/groupledger/internal/errs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError maps the error taxonomy onto HTTP status codes. Unclassified
// errors are logged and reported as a bare 500 so storage details never
// leak to clients.
func respondError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)

	var status int
	switch kind {
	case errs.KindUnauthenticated:
		status = http.StatusUnauthorized
	case errs.KindForbidden:
		status = http.StatusForbidden
	case errs.KindInvalid:
		status = http.StatusBadRequest
	case errs.KindInvariant:
		status = http.StatusConflict
	case errs.KindNotFound:
		status = http.StatusNotFound
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	respondJSON(w, status, errorBody{Error: kind.String(), Reason: errs.ReasonOf(err)})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Invalid("http.Decode", "malformed_json")
	}
	return nil
}
