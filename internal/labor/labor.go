// Package labor accepts staffing requests from contractors.
package labor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type Store interface {
	// InsertLaborRequest stores the request and its crafts in one transaction.
	InsertLaborRequest(ctx context.Context, r *models.LaborRequest) error
	ListLaborRequests(ctx context.Context, limit, offset int) ([]models.LaborRequest, int, error)
}

type Notifier interface {
	EnqueueLaborRequestReceived(ctx context.Context, p queue.LaborRequestReceivedPayload) error
}

type Service struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewService(s Store, n Notifier) *Service {
	return &Service{store: s, notifier: n, now: time.Now}
}

// Submit records a labor request. submittedBy is uuid.Nil for anonymous
// callers.
func (s *Service) Submit(ctx context.Context, in validation.LaborRequestInput, submittedBy uuid.UUID) (*models.LaborRequest, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}
	start, err := validation.ParseDate(in.StartDate)
	if err != nil {
		return nil, apperr.Validation("invalid request body", apperr.FieldError{Field: "start_date", Message: err.Error()})
	}

	now := s.now().UTC()
	r := &models.LaborRequest{
		ID:              uuid.New(),
		CompanyName:     in.CompanyName,
		ContactName:     in.ContactName,
		ContactEmail:    in.ContactEmail,
		ContactPhone:    in.ContactPhone,
		ProjectName:     in.ProjectName,
		ProjectLocation: in.ProjectLocation,
		StartDate:       models.NewDate(start),
		DurationWeeks:   in.DurationWeeks,
		Notes:           in.Notes,
		Status:          models.LaborRequestStatusNew,
		CreatedAt:       now,
	}
	if submittedBy != uuid.Nil {
		r.SubmittedBy = &submittedBy
	}

	workers := 0
	r.Crafts = make([]models.CraftRequirement, len(in.Crafts))
	for i, c := range in.Crafts {
		r.Crafts[i] = models.CraftRequirement{
			ID:              uuid.New(),
			LaborRequestID:  r.ID,
			Position:        i + 1,
			Trade:           c.Trade,
			Region:          c.Region,
			ExperienceLevel: c.ExperienceLevel,
			WorkerCount:     c.WorkerCount,
			Schedule:        c.Schedule,
			PayRateMin:      c.PayRateMin,
			PayRateMax:      c.PayRateMax,
		}
		workers += c.WorkerCount
	}

	if err := s.store.InsertLaborRequest(ctx, r); err != nil {
		return nil, apperr.Database(fmt.Errorf("insert labor request: %w", err))
	}

	err = s.notifier.EnqueueLaborRequestReceived(ctx, queue.LaborRequestReceivedPayload{
		RequestID:   r.ID.String(),
		To:          r.ContactEmail,
		ContactName: r.ContactName,
		CompanyName: r.CompanyName,
		ProjectName: r.ProjectName,
		CraftCount:  len(r.Crafts),
		Workers:     workers,
	})
	if err != nil {
		slog.Warn("enqueue labor request notification", "request_id", r.ID, "error", err)
	}
	return r, nil
}

func (s *Service) ListForAdmin(ctx context.Context, limit, offset int) ([]models.LaborRequest, models.Pagination, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	reqs, total, err := s.store.ListLaborRequests(ctx, limit, offset)
	if err != nil {
		return nil, models.Pagination{}, apperr.Database(fmt.Errorf("list labor requests: %w", err))
	}
	if reqs == nil {
		reqs = []models.LaborRequest{}
	}
	return reqs, models.NewPagination(total, limit, offset), nil
}
