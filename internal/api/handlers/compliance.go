package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/compliance"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type ComplianceHandler struct {
	svc       *compliance.Service
	maxUpload int64
}

func NewComplianceHandler(svc *compliance.Service, maxUpload int64) *ComplianceHandler {
	return &ComplianceHandler{svc: svc, maxUpload: maxUpload}
}

func (h *ComplianceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	items, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *ComplianceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in validation.ComplianceUpdateInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeInvalidParams); verr != nil {
		render.Error(w, r, verr)
		return
	}
	items, err := h.svc.Upsert(r.Context(), id, in, caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *ComplianceHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in validation.ComplianceVerifyInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	item, err := h.svc.Review(r.Context(), id, in, caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, item)
}

// Upload accepts a multipart form with the document in the "file" field.
func (h *ComplianceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	// Leave headroom for the multipart envelope; the service enforces the
	// exact file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxBodyBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "is required"
		if errors.As(err, &tooLarge) {
			msg = "is too large"
		}
		render.Error(w, r, apperr.Validation("invalid upload", apperr.FieldError{Field: "file", Message: msg}))
		return
	}
	defer file.Close()

	item, err := h.svc.AttachDocument(r.Context(), id, chi.URLParam(r, "type"), file, callerProfile(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, item)
}
