package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/auth"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

const (
	ActionAgencyCreate     = "agency.create"
	ActionAgencyStatus     = "agency.status"
	ActionAgencyProfile    = "agency.profile"
	ActionClaimApprove     = "claim.approve"
	ActionClaimReject      = "claim.reject"
	ActionClaimReview      = "claim.review"
	ActionComplianceUpsert = "compliance.upsert"
	ActionComplianceVerify = "compliance.verify"
	ActionComplianceReject = "compliance.reject"
	ActionComplianceUpload = "compliance.upload"
	ActionUserCleanup      = "user.cleanup"
)

type Store interface {
	InsertAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, q Query) ([]models.AuditLog, int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

type LogEntry struct {
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
}

type ipKey struct{}

// WithClientIP records the caller address for audit entries written while
// serving the request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func clientIP(ctx context.Context) *string {
	raw, _ := ctx.Value(ipKey{}).(string)
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		if ap, perr := netip.ParseAddrPort(raw); perr == nil {
			addr = ap.Addr()
		} else {
			return nil
		}
	}
	s := addr.String()
	return &s
}

// Log writes an audit entry. A failed write is logged and swallowed so the
// audited action itself still succeeds.
func (s *Service) Log(ctx context.Context, entry LogEntry) {
	var actor *uuid.UUID
	if id := auth.UserID(ctx); id != uuid.Nil {
		actor = &id
	}

	details := json.RawMessage(`{}`)
	if len(entry.Details) > 0 {
		if b, err := json.Marshal(entry.Details); err == nil {
			details = b
		}
	}

	l := &models.AuditLog{
		ID:           uuid.New(),
		ActorID:      actor,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      details,
		IPAddress:    clientIP(ctx),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertAuditLog(ctx, l); err != nil {
		slog.Error("write audit log", "action", entry.Action, "error", err)
	}
}

type Query struct {
	Action    string
	ActorID   *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

func (s *Service) List(ctx context.Context, q Query) ([]models.AuditLog, models.Pagination, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	logs, total, err := s.store.ListAuditLogs(ctx, q)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list audit logs: %w", err)
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, models.NewPagination(total, q.Limit, q.Offset), nil
}
