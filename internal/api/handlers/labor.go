package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/labor"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type LaborHandler struct {
	svc *labor.Service
}

func NewLaborHandler(svc *labor.Service) *LaborHandler {
	return &LaborHandler{svc: svc}
}

// Submit is open to anonymous callers; a valid session is recorded as the
// submitter.
func (h *LaborHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in validation.LaborRequestInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	req, err := h.svc.Submit(r.Context(), in, caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusCreated, req)
}

func (h *LaborHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	reqs, page, err := h.svc.ListForAdmin(r.Context(), limit, offset)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"labor_requests": reqs, "pagination": page})
}
