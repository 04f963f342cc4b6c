package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/auth"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.InvalidParams("invalid parameters",
			apperr.FieldError{Field: name, Message: "must be a valid UUID"})
	}
	return id, nil
}

// pageParams reads limit and offset. Malformed values are reported rather
// than silently replaced.
func pageParams(r *http.Request) (limit, offset int, err error) {
	var details []apperr.FieldError
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 || n > 100 {
			details = append(details, apperr.FieldError{Field: "limit", Message: "must be an integer between 1 and 100"})
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			details = append(details, apperr.FieldError{Field: "offset", Message: "must be a non-negative integer"})
		}
		offset = n
	}
	if details != nil {
		return 0, 0, apperr.InvalidParams("invalid query parameters", details...)
	}
	return limit, offset, nil
}

// caller returns the authenticated user id. Routes using it sit behind
// RequireUser or RequireAdmin.
func caller(r *http.Request) uuid.UUID {
	return auth.UserID(r.Context())
}

// callerProfile returns the loaded profile, or a bare user profile for a
// session without a profile row.
func callerProfile(r *http.Request) *models.Profile {
	if p := auth.ProfileFromContext(r.Context()); p != nil {
		return p
	}
	if s := auth.SessionFromContext(r.Context()); s != nil {
		return &models.Profile{ID: s.UserID, Email: s.Email, Role: models.RoleUser}
	}
	return nil
}
