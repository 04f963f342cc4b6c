package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/api/render"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/cleanup"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type AdminHandler struct {
	auditSvc   *audit.Service
	cleanupSvc *cleanup.Service
}

func NewAdminHandler(auditSvc *audit.Service, cleanupSvc *cleanup.Service) *AdminHandler {
	return &AdminHandler{auditSvc: auditSvc, cleanupSvc: cleanupSvc}
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	q := audit.Query{
		Action: r.URL.Query().Get("action"),
		Limit:  limit,
		Offset: offset,
	}

	var details []apperr.FieldError
	if s := r.URL.Query().Get("actor_id"); s != "" {
		id, perr := uuid.Parse(s)
		if perr != nil {
			details = append(details, apperr.FieldError{Field: "actor_id", Message: "must be a valid UUID"})
		} else {
			q.ActorID = &id
		}
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			details = append(details, apperr.FieldError{Field: "start_date", Message: "must be an RFC 3339 timestamp"})
		} else {
			q.StartDate = &t
		}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			details = append(details, apperr.FieldError{Field: "end_date", Message: "must be an RFC 3339 timestamp"})
		} else {
			q.EndDate = &t
		}
	}
	if details != nil {
		render.Error(w, r, apperr.InvalidParams("invalid query parameters", details...))
		return
	}

	logs, page, err := h.auditSvc.List(r.Context(), q)
	if err != nil {
		render.Error(w, r, apperr.Database(err))
		return
	}
	render.Data(w, http.StatusOK, map[string]interface{}{"audit_logs": logs, "pagination": page})
}

func (h *AdminHandler) CleanupUser(w http.ResponseWriter, r *http.Request) {
	var in validation.UserCleanupInput
	if verr := validation.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &in, apperr.CodeValidation); verr != nil {
		render.Error(w, r, verr)
		return
	}
	res, err := h.cleanupSvc.Purge(r.Context(), in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.Data(w, http.StatusOK, res)
}
