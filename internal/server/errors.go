package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"curve-lab/internal/analytics"
	"curve-lab/internal/simulation"
	"curve-lab/internal/storage"
	"curve-lab/pkg/curve"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// errorKind maps an error to its wire kind. The engine's taxonomy is
// closed, so every curve error lands on exactly one kind.
func errorKind(err error) string {
	switch {
	case errors.Is(err, curve.ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, curve.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, curve.ErrZeroInput):
		return "zero_input"
	case errors.Is(err, curve.ErrExceedsPool):
		return "exceeds_pool"
	case errors.Is(err, simulation.ErrInvalidSchedule):
		return "invalid_schedule"
	case errors.Is(err, analytics.ErrFillMismatch):
		return "fill_mismatch"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, storage.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

// httpStatus maps an error kind to its HTTP status code.
func httpStatus(kind string) int {
	switch kind {
	case "invalid_config", "out_of_range", "zero_input", "exceeds_pool",
		"invalid_schedule", "invalid_input":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "duplicate_key":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the JSON error reply for err.
func writeError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(kind))
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Kind: kind})
}

// writeJSON writes a JSON reply with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
