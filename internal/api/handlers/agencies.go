package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type AgencyHandler struct {
	svc *agency.Service
}

func NewAgencyHandler(svc *agency.Service) *AgencyHandler {
	return &AgencyHandler{svc: svc}
}

// AdminList serves GET /api/admin/agencies.
func (h *AgencyHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ParseFilter(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, page)
}

func (h *AgencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.CreateAgencyInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	a, err := h.svc.Create(r.Context(), in, caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusCreated, a)
}

func (h *AgencyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in validation.AgencyStatusInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	a, err := h.svc.SetStatus(r.Context(), id, in, caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, a)
}

// PublicList serves GET /api/agencies. Only search, limit and offset apply.
func (h *AgencyHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Del("status")
	q.Del("claimed")
	f, err := h.svc.ParseFilter(q)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	page, err := h.svc.PublicList(r.Context(), f)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, page)
}

func (h *AgencyHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, a)
}

func (h *AgencyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in validation.UpdateAgencyProfileInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	a, err := h.svc.UpdateProfile(r.Context(), id, in, callerProfile(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, a)
}
