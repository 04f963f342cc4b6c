// Package agency manages the agency directory: admin listing and creation,
// activation toggles, public lookups and owner profile edits.
package agency

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/slug"
	"github.com/nikhilbhutani/agencyhub/internal/store"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	ClaimedYes     = "yes"
	ClaimedNo      = "no"
	FilterAll      = "all"
)

type Filter struct {
	Search  string
	Status  string
	Claimed string
	Limit   int
	Offset  int
}

type Store interface {
	ListAgencies(ctx context.Context, f Filter) ([]models.Agency, int, error)
	GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	GetAgencyBySlug(ctx context.Context, slug string) (*models.Agency, error)
	AgencyNameExists(ctx context.Context, name string) (bool, error)
	AgencySlugExists(ctx context.Context, slug string) (bool, error)
	InsertAgency(ctx context.Context, a *models.Agency) error
	SetAgencyStatus(ctx context.Context, id uuid.UUID, active bool, editor uuid.UUID, at time.Time) (*models.Agency, error)
	UpdateAgencyProfile(ctx context.Context, a *models.Agency) error
}

type ProfileSummaries interface {
	Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ProfileSummary, error)
}

type Service struct {
	store    Store
	profiles ProfileSummaries
	audit    *audit.Service
	cfg      config.AgencyConfig
	now      func() time.Time
}

func NewService(s Store, profiles ProfileSummaries, auditSvc *audit.Service, cfg config.AgencyConfig) *Service {
	return &Service{
		store:    s,
		profiles: profiles,
		audit:    auditSvc,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ParseFilter reads list parameters from a query string. Every problem is
// reported as an INVALID_PARAMS detail.
func (s *Service) ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Search:  strings.TrimSpace(q.Get("search")),
		Status:  FilterAll,
		Claimed: FilterAll,
		Limit:   s.cfg.PageSize,
	}
	var details []apperr.FieldError

	if v := q.Get("status"); v != "" {
		switch v {
		case StatusActive, StatusInactive, FilterAll:
			f.Status = v
		default:
			details = append(details, apperr.FieldError{Field: "status", Message: "must be one of: active, inactive, all"})
		}
	}
	if v := q.Get("claimed"); v != "" {
		switch v {
		case ClaimedYes, ClaimedNo, FilterAll:
			f.Claimed = v
		default:
			details = append(details, apperr.FieldError{Field: "claimed", Message: "must be one of: yes, no, all"})
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.MaxPageSize {
			details = append(details, apperr.FieldError{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", s.cfg.MaxPageSize)})
		} else {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			details = append(details, apperr.FieldError{Field: "offset", Message: "must be a non-negative integer"})
		} else {
			f.Offset = n
		}
	}
	if len([]rune(f.Search)) > 200 {
		details = append(details, apperr.FieldError{Field: "search", Message: "must be at most 200 characters"})
	}

	if details != nil {
		return Filter{}, apperr.InvalidParams("invalid query parameters", details...)
	}
	return f, nil
}

type Page struct {
	Agencies   []models.Agency   `json:"agencies"`
	Pagination models.Pagination `json:"pagination"`
}

// List returns one page of agencies, newest first, with the owner profile of
// each claimed agency attached.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	agencies, total, err := s.store.ListAgencies(ctx, f)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list agencies: %w", err))
	}
	if agencies == nil {
		agencies = []models.Agency{}
	}

	var owners []uuid.UUID
	for _, a := range agencies {
		if a.ClaimedBy != nil {
			owners = append(owners, *a.ClaimedBy)
		}
	}
	if len(owners) > 0 {
		summaries, err := s.profiles.Summaries(ctx, owners)
		if err != nil {
			return nil, apperr.Database(err)
		}
		for i := range agencies {
			if id := agencies[i].ClaimedBy; id != nil {
				agencies[i].Owner = summaries[*id]
			}
		}
	}

	return &Page{Agencies: agencies, Pagination: models.NewPagination(total, f.Limit, f.Offset)}, nil
}

// PublicList lists active agencies only. Owner details are not exposed.
func (s *Service) PublicList(ctx context.Context, f Filter) (*Page, error) {
	f.Status = StatusActive
	f.Claimed = FilterAll
	agencies, total, err := s.store.ListAgencies(ctx, f)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list agencies: %w", err))
	}
	if agencies == nil {
		agencies = []models.Agency{}
	}
	return &Page{Agencies: agencies, Pagination: models.NewPagination(total, f.Limit, f.Offset)}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	a, err := s.store.GetAgency(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agency")
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get agency: %w", err))
	}
	return a, nil
}

// GetBySlug is the public lookup; inactive agencies are reported missing.
func (s *Service) GetBySlug(ctx context.Context, agencySlug string) (*models.Agency, error) {
	a, err := s.store.GetAgencyBySlug(ctx, agencySlug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agency")
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get agency by slug: %w", err))
	}
	if !a.IsActive {
		return nil, apperr.NotFound("agency")
	}
	return a, nil
}

// Create inserts a new active, unclaimed agency. Names are unique ignoring
// case; the slug gets a numeric suffix when the plain form is taken.
func (s *Service) Create(ctx context.Context, in validation.CreateAgencyInput, adminID uuid.UUID) (*models.Agency, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}

	exists, err := s.store.AgencyNameExists(ctx, in.Name)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("check agency name: %w", err))
	}
	if exists {
		return nil, nameConflict()
	}

	now := s.now().UTC()
	a := &models.Agency{
		Name:              in.Name,
		Description:       in.Description,
		Website:           in.Website,
		Phone:             in.Phone,
		Email:             in.Email,
		FoundedYear:       in.FoundedYear,
		EmployeeCount:     in.EmployeeCount,
		HeadquartersCity:  in.HeadquartersCity,
		HeadquartersState: in.HeadquartersState,
		IsActive:          true,
		IsClaimed:         false,
		CreatedBy:         &adminID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	base := slug.Make(in.Name)
	for attempt := 1; attempt <= s.cfg.SlugMaxAttempts; attempt++ {
		candidate := slug.Candidate(base, attempt)
		taken, err := s.store.AgencySlugExists(ctx, candidate)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("check agency slug: %w", err))
		}
		if taken {
			continue
		}

		a.ID = uuid.New()
		a.Slug = candidate
		err = s.store.InsertAgency(ctx, a)
		if errors.Is(err, store.ErrDuplicateName) {
			return nil, nameConflict()
		}
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race for this slug; try the next suffix.
			continue
		}
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("insert agency: %w", err))
		}

		s.audit.Log(ctx, audit.LogEntry{
			Action:       audit.ActionAgencyCreate,
			ResourceType: "agency",
			ResourceID:   &a.ID,
			Details:      map[string]interface{}{"name": a.Name, "slug": a.Slug},
		})
		return a, nil
	}

	return nil, apperr.Conflict("could not generate a unique slug for this name",
		apperr.FieldError{Field: "name", Message: "too many agencies share this name"})
}

func nameConflict() *apperr.Error {
	return apperr.Conflict("an agency with this name already exists",
		apperr.FieldError{Field: "name", Message: "is already in use"})
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, in validation.AgencyStatusInput, adminID uuid.UUID) (*models.Agency, error) {
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}

	a, err := s.store.SetAgencyStatus(ctx, id, *in.Active, adminID, s.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agency")
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("set agency status: %w", err))
	}

	s.audit.Log(ctx, audit.LogEntry{
		Action:       audit.ActionAgencyStatus,
		ResourceType: "agency",
		ResourceID:   &a.ID,
		Details:      map[string]interface{}{"active": a.IsActive},
	})
	return a, nil
}

// UpdateProfile applies the supplied fields and recomputes the completion
// percentage. Only the owner or an admin may edit.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in validation.UpdateAgencyProfileInput, actor *models.Profile) (*models.Agency, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(a, actor) {
		return nil, apperr.Forbidden("only the agency owner or an admin can edit this agency")
	}

	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}

	fields := a.Fields()
	merge(&fields.Description, in.Description)
	merge(&fields.Website, in.Website)
	merge(&fields.Phone, in.Phone)
	merge(&fields.Email, in.Email)
	merge(&fields.EmployeeCount, in.EmployeeCount)
	merge(&fields.HeadquartersCity, in.HeadquartersCity)
	merge(&fields.HeadquartersState, in.HeadquartersState)
	merge(&fields.LogoURL, in.LogoURL)
	if in.FoundedYear != nil {
		fields.FoundedYear = in.FoundedYear
	}

	now := s.now().UTC()
	a.ApplyFields(fields)
	a.ProfileCompletionPercentage = fields.CompletionPercentage()
	a.LastEditedBy = &actor.ID
	a.LastEditedAt = &now
	a.UpdatedAt = now

	if err := s.store.UpdateAgencyProfile(ctx, a); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("agency")
		}
		return nil, apperr.Database(fmt.Errorf("update agency profile: %w", err))
	}

	if actor.IsAdmin() {
		s.audit.Log(ctx, audit.LogEntry{
			Action:       audit.ActionAgencyProfile,
			ResourceType: "agency",
			ResourceID:   &a.ID,
			Details:      map[string]interface{}{"completion": a.ProfileCompletionPercentage},
		})
	}
	return a, nil
}

// CanManage reports whether actor may edit the agency listing and its
// documents.
func CanManage(a *models.Agency, actor *models.Profile) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return a.IsClaimed && a.ClaimedBy != nil && *a.ClaimedBy == actor.ID
}

func merge(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}
