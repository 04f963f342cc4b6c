package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/claim"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type ClaimHandler struct {
	svc *claim.Service
}

func NewClaimHandler(svc *claim.Service) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in validation.ClaimRequestInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	c, err := h.svc.Submit(r.Context(), caller(r), in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusCreated, c)
}

func (h *ClaimHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := h.svc.ListForUser(r.Context(), caller(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"claims": claims})
}

func (h *ClaimHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	claims, page, err := h.svc.ListForAdmin(r.Context(), claim.Filter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"claims": claims, "pagination": page})
}

func (h *ClaimHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(id uuid.UUID) (*models.ClaimRequest, error) {
		return h.svc.Approve(r.Context(), id, caller(r))
	})
}

func (h *ClaimHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var in validation.ClaimRejectInput
	h.decide(w, r, func(id uuid.UUID) (*models.ClaimRequest, error) {
		if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
			return nil, verr
		}
		return h.svc.Reject(r.Context(), id, caller(r), in)
	})
}

func (h *ClaimHandler) Review(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(id uuid.UUID) (*models.ClaimRequest, error) {
		return h.svc.MarkUnderReview(r.Context(), id, caller(r))
	})
}

func (h *ClaimHandler) decide(w http.ResponseWriter, r *http.Request, fn func(uuid.UUID) (*models.ClaimRequest, error)) {
	id, err := uuidParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}
	c, err := fn(id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, c)
}
