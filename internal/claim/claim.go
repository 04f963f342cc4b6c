// Package claim implements the agency ownership claim workflow.
package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/metrics"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
	"github.com/nikhilbhutani/agencyhub/internal/store"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type Filter struct {
	Status string
	UserID *uuid.UUID
	Limit  int
	Offset int
}

// Store persists claim requests. ApproveClaim and TransitionClaim lock the
// rows they read, run check against the locked state and only write when it
// returns nil, all in one transaction.
type Store interface {
	GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	HasOpenClaim(ctx context.Context, agencyID, userID uuid.UUID) (bool, error)
	InsertClaim(ctx context.Context, c *models.ClaimRequest) error
	GetClaim(ctx context.Context, id uuid.UUID) (*models.ClaimRequest, error)
	ListClaims(ctx context.Context, f Filter) ([]models.ClaimRequest, int, error)
	ApproveClaim(ctx context.Context, id, reviewer uuid.UUID, at time.Time, check func(*models.ClaimRequest, *models.Agency) error) (*models.ClaimRequest, error)
	TransitionClaim(ctx context.Context, id uuid.UUID, next models.ClaimStatus, reviewer uuid.UUID, at time.Time, reason *string, check func(*models.ClaimRequest) error) (*models.ClaimRequest, error)
}

type Notifier interface {
	EnqueueClaimDecision(ctx context.Context, p queue.ClaimDecisionPayload) error
}

type Service struct {
	store    Store
	notifier Notifier
	audit    *audit.Service
	now      func() time.Time
}

func NewService(s Store, n Notifier, auditSvc *audit.Service) *Service {
	return &Service{store: s, notifier: n, audit: auditSvc, now: time.Now}
}

// Submit files a pending claim for the caller. An agency already owned, or an
// open claim by the same user for the same agency, is refused.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, in validation.ClaimRequestInput) (*models.ClaimRequest, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}
	agencyID := uuid.MustParse(in.AgencyID)

	a, err := s.store.GetAgency(ctx, agencyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agency")
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get agency: %w", err))
	}
	if !a.IsActive {
		return nil, apperr.NotFound("agency")
	}
	if a.IsClaimed {
		return nil, apperr.AgencyAlreadyClaimed()
	}

	open, err := s.store.HasOpenClaim(ctx, agencyID, userID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("check open claims: %w", err))
	}
	if open {
		return nil, apperr.PendingClaimExists()
	}

	now := s.now().UTC()
	c := &models.ClaimRequest{
		ID:                 uuid.New(),
		AgencyID:           agencyID,
		UserID:             userID,
		BusinessEmail:      in.BusinessEmail,
		PhoneNumber:        in.PhoneNumber,
		PositionTitle:      in.PositionTitle,
		VerificationMethod: in.VerificationMethod,
		AdditionalNotes:    in.AdditionalNotes,
		EmailDomainMatch:   EmailDomainMatches(in.BusinessEmail, a.Website),
		Status:             models.ClaimStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
		AgencyName:         a.Name,
	}
	if err := s.store.InsertClaim(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.PendingClaimExists()
		}
		return nil, apperr.Database(fmt.Errorf("insert claim: %w", err))
	}
	return c, nil
}

// Approve hands the agency to the requester and promotes a plain user to
// agency owner.
func (s *Service) Approve(ctx context.Context, claimID, adminID uuid.UUID) (*models.ClaimRequest, error) {
	c, err := s.store.ApproveClaim(ctx, claimID, adminID, s.now().UTC(), func(c *models.ClaimRequest, a *models.Agency) error {
		if c.Status.Terminal() {
			return apperr.ClaimAlreadyResolved(string(c.Status))
		}
		if a.IsClaimed && (a.ClaimedBy == nil || *a.ClaimedBy != c.UserID) {
			return apperr.AgencyAlreadyClaimed()
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.decided(ctx, c, audit.ActionClaimApprove, nil)
	return c, nil
}

func (s *Service) Reject(ctx context.Context, claimID, adminID uuid.UUID, in validation.ClaimRejectInput) (*models.ClaimRequest, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}

	reason := in.Reason
	c, err := s.store.TransitionClaim(ctx, claimID, models.ClaimStatusRejected, adminID, s.now().UTC(), &reason, transitionCheck(models.ClaimStatusRejected))
	if err != nil {
		return nil, storeError(err)
	}

	s.decided(ctx, c, audit.ActionClaimReject, map[string]interface{}{"reason": reason})
	return c, nil
}

// MarkUnderReview moves a pending claim to under_review.
func (s *Service) MarkUnderReview(ctx context.Context, claimID, adminID uuid.UUID) (*models.ClaimRequest, error) {
	c, err := s.store.TransitionClaim(ctx, claimID, models.ClaimStatusUnderReview, adminID, s.now().UTC(), nil, transitionCheck(models.ClaimStatusUnderReview))
	if err != nil {
		return nil, storeError(err)
	}

	s.decided(ctx, c, audit.ActionClaimReview, nil)
	return c, nil
}

func transitionCheck(next models.ClaimStatus) func(*models.ClaimRequest) error {
	return func(c *models.ClaimRequest) error {
		if c.Status.Terminal() {
			return apperr.ClaimAlreadyResolved(string(c.Status))
		}
		if !c.Status.CanTransition(next) {
			return apperr.Conflict(fmt.Sprintf("claim request is %s and cannot move to %s", c.Status, next),
				apperr.FieldError{Field: "status", Message: "is already " + string(c.Status)})
		}
		return nil
	}
}

func (s *Service) ListForAdmin(ctx context.Context, f Filter) ([]models.ClaimRequest, models.Pagination, error) {
	if f.Status != "" && !models.ClaimStatus(f.Status).Valid() {
		return nil, models.Pagination{}, apperr.InvalidParams("invalid query parameters",
			apperr.FieldError{Field: "status", Message: "must be one of: pending, under_review, approved, rejected"})
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.UserID = nil

	claims, total, err := s.store.ListClaims(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, apperr.Database(fmt.Errorf("list claims: %w", err))
	}
	if claims == nil {
		claims = []models.ClaimRequest{}
	}
	return claims, models.NewPagination(total, f.Limit, f.Offset), nil
}

// ListForUser returns every claim the user has filed, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ClaimRequest, error) {
	claims, _, err := s.store.ListClaims(ctx, Filter{UserID: &userID, Limit: 100})
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list claims: %w", err))
	}
	if claims == nil {
		claims = []models.ClaimRequest{}
	}
	return claims, nil
}

func (s *Service) decided(ctx context.Context, c *models.ClaimRequest, action string, details map[string]interface{}) {
	metrics.ClaimDecisions.WithLabelValues(string(c.Status)).Inc()

	if details == nil {
		details = map[string]interface{}{}
	}
	details["agency_id"] = c.AgencyID.String()
	details["status"] = string(c.Status)
	s.audit.Log(ctx, audit.LogEntry{
		Action:       action,
		ResourceType: "claim_request",
		ResourceID:   &c.ID,
		Details:      details,
	})

	if c.AgencyName == "" {
		if a, err := s.store.GetAgency(ctx, c.AgencyID); err == nil {
			c.AgencyName = a.Name
		}
	}
	p := queue.ClaimDecisionPayload{
		ClaimID:    c.ID.String(),
		AgencyName: c.AgencyName,
		To:         c.BusinessEmail,
		Status:     string(c.Status),
	}
	if c.RejectionReason != nil {
		p.Reason = *c.RejectionReason
	}
	if err := s.notifier.EnqueueClaimDecision(ctx, p); err != nil {
		slog.Warn("enqueue claim decision notification", "claim_id", c.ID, "error", err)
	}
}

func storeError(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("claim request")
	}
	return apperr.Database(err)
}

// EmailDomainMatches reports whether the email's domain is the host of the
// agency website, ignoring a leading www.
func EmailDomainMatches(email string, website *string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || website == nil || *website == "" {
		return false
	}
	domain := strings.TrimPrefix(strings.ToLower(email[at+1:]), "www.")

	raw := strings.TrimSpace(*website)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host != "" && host == domain
}
