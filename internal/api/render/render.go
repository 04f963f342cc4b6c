// Package render writes the API response envelope.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
)

type errorBody struct {
	Code    apperr.Code         `json:"code"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// Data writes {"data": v}.
func Data(w http.ResponseWriter, status int, v interface{}) {
	JSON(w, status, map[string]interface{}{"data": v})
}

// Error writes {"error": {...}}. Server-side failures are logged with their
// cause and only the generic message is returned.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Internal() {
		slog.Error("request failed",
			"code", e.Code,
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	}
	JSON(w, e.Status, map[string]interface{}{"error": errorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}})
}
