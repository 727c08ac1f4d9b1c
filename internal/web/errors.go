package web

import (
	"encoding/json"
	"net/http"

	"github.com/MYS158/shop-project/internal/catalog"
	"github.com/MYS158/shop-project/internal/logging"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error catalog.UserMessage `json:"error"`
}

// respondError maps an error from the service layer to an HTTP status
// and a user-facing message. Storage detail stays in the logs.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case catalog.IsValidationError(err):
		status = http.StatusUnprocessableEntity
	case catalog.IsDuplicateKeyError(err):
		status = http.StatusConflict
	case catalog.IsConnectivityError(err):
		status = http.StatusServiceUnavailable
	}

	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		log.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, ErrorResponse{Error: catalog.MapError(err)})
}

// writeError writes a plain client error without going through the
// message mapper. Used for malformed requests that never reach the
// service layer.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: catalog.UserMessage{
		Message: message,
		Code:    "ERR000",
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
