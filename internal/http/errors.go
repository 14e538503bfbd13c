// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeRegistryError maps a registry error onto the wire format. Errors
// without a registry kind are store faults; their detail stays in the log.
func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case registry.IsInvalidInput(err):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case registry.IsNotFound(err):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case registry.IsConflict(err):
		WriteJSONError(w, http.StatusConflict, "conflict", err.Error())
	case registry.IsEmptyCollection(err):
		WriteJSONError(w, http.StatusNotFound, "no_products", err.Error())
	default:
		obs.Logger.Error("registry_error", "error", err.Error())
		WriteJSONError(w, http.StatusInternalServerError, "operation_failed", "")
	}
}
