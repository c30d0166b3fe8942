package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
)

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// messageResponse is the envelope for successful requests that carry no
// payload beyond a human-readable confirmation.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Success: true, Message: message})
}

// errorStatus maps domain errors to HTTP status codes. Validation
// failures become 422, missing records 404, duplicates 409.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrBudgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateBudget):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidLimit),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body into v, capping the body size so a
// hostile client cannot exhaust memory.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
