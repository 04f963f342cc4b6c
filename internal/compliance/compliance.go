// Package compliance tracks the per-agency certification records and their
// verification by admins.
package compliance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/cache"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/metrics"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
	"github.com/nikhilbhutani/agencyhub/internal/storage"
	"github.com/nikhilbhutani/agencyhub/internal/store"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
	"github.com/nikhilbhutani/agencyhub/pkg/textextract"
)

type Store interface {
	GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	ListCompliance(ctx context.Context, agencyID uuid.UUID) ([]models.ComplianceItem, error)
	// UpsertCompliance writes all items in one statement keyed on
	// (agency_id, compliance_type) and returns the stored rows.
	UpsertCompliance(ctx context.Context, items []models.ComplianceItem) ([]models.ComplianceItem, error)
}

type Notifier interface {
	EnqueueComplianceRejected(ctx context.Context, p queue.ComplianceRejectedPayload) error
}

type ProfileLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Item is a compliance row as returned by the API.
type Item struct {
	models.ComplianceItem
	Status              models.ComplianceStatus `json:"status"`
	DaysUntilExpiration *int                    `json:"days_until_expiration"`
	DocumentSignedURL   *string                 `json:"document_signed_url,omitempty"`
}

type Service struct {
	store    Store
	files    storage.Storage
	cache    *cache.Cache
	profiles ProfileLookup
	notifier Notifier
	audit    *audit.Service
	cfg      config.StorageConfig
	now      func() time.Time
}

func NewService(s Store, files storage.Storage, c *cache.Cache, profiles ProfileLookup, n Notifier, auditSvc *audit.Service, cfg config.StorageConfig) *Service {
	return &Service{
		store:    s,
		files:    files,
		cache:    c,
		profiles: profiles,
		notifier: n,
		audit:    auditSvc,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) loadAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	a, err := s.store.GetAgency(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agency")
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get agency: %w", err))
	}
	return a, nil
}

func (s *Service) items(ctx context.Context, agencyID uuid.UUID) ([]models.ComplianceItem, error) {
	items, err := s.store.ListCompliance(ctx, agencyID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list compliance: %w", err))
	}
	return items, nil
}

// Get returns the agency's compliance rows with their derived status and a
// signed URL for any stored document.
func (s *Service) Get(ctx context.Context, agencyID uuid.UUID) ([]Item, error) {
	if _, err := s.loadAgency(ctx, agencyID); err != nil {
		return nil, err
	}
	items, err := s.items(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, items), nil
}

// Upsert applies a batch of admin edits. Every item is validated before
// anything is written and the batch is stored in a single statement.
func (s *Service) Upsert(ctx context.Context, agencyID uuid.UUID, in validation.ComplianceUpdateInput, adminID uuid.UUID) ([]Item, error) {
	if verr := validation.Params(&in); verr != nil {
		return nil, verr
	}
	var dups []apperr.FieldError
	seen := make(map[string]bool, len(in.Items))
	for i, it := range in.Items {
		if seen[it.Type] {
			dups = append(dups, apperr.FieldError{Field: fmt.Sprintf("items[%d].type", i), Message: "appears more than once"})
		}
		seen[it.Type] = true
	}
	if dups != nil {
		return nil, apperr.InvalidParams("invalid parameters", dups...)
	}

	if _, err := s.loadAgency(ctx, agencyID); err != nil {
		return nil, err
	}
	existing, err := s.items(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	byType := make(map[models.ComplianceType]models.ComplianceItem, len(existing))
	for _, it := range existing {
		byType[it.Type] = it
	}

	now := s.now().UTC()
	batch := make([]models.ComplianceItem, 0, len(in.Items))
	for _, input := range in.Items {
		t := models.ComplianceType(input.Type)
		item, ok := byType[t]
		if !ok {
			item = models.ComplianceItem{ID: uuid.New(), AgencyID: agencyID, Type: t, CreatedAt: now}
		}
		if err := apply(&item, input, adminID, now); err != nil {
			return nil, err
		}
		batch = append(batch, item)
	}

	stored, err := s.store.UpsertCompliance(ctx, batch)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("upsert compliance: %w", err))
	}
	metrics.ComplianceChanges.WithLabelValues("upsert").Add(float64(len(stored)))

	types := make([]string, len(stored))
	for i, it := range stored {
		types[i] = string(it.Type)
	}
	s.audit.Log(ctx, audit.LogEntry{
		Action:       audit.ActionComplianceUpsert,
		ResourceType: "agency",
		ResourceID:   &agencyID,
		Details:      map[string]interface{}{"types": types},
	})
	return s.decorate(ctx, stored), nil
}

// apply merges one input item into its row. isActive and expirationDate are
// replaced outright; omitted notes and documentUrl keep their stored value;
// isVerified stamps or clears the verifier pair and is left alone when
// omitted.
func apply(item *models.ComplianceItem, in validation.ComplianceItemInput, adminID uuid.UUID, now time.Time) error {
	item.IsActive = *in.IsActive
	item.ExpirationDate = nil
	if in.ExpirationDate != nil {
		d, err := validation.ParseDate(*in.ExpirationDate)
		if err != nil {
			return apperr.InvalidParams("invalid parameters", apperr.FieldError{Field: "expirationDate", Message: err.Error()})
		}
		exp := models.NewDate(d)
		item.ExpirationDate = &exp
	}
	if in.Notes != nil {
		item.Notes = validation.Trim(in.Notes)
	}
	if in.DocumentURL != nil {
		item.DocumentURL = validation.Trim(in.DocumentURL)
	}
	if in.IsVerified != nil {
		if *in.IsVerified {
			item.MarkVerified(adminID, now)
		} else {
			item.ClearVerification()
		}
	}
	item.UpdatedAt = now
	return nil
}

// Review verifies or rejects a single item. Rejection clears the verifier
// pair, keeps the reason for the agency and emails the owner.
func (s *Service) Review(ctx context.Context, agencyID uuid.UUID, in validation.ComplianceVerifyInput, adminID uuid.UUID) (*Item, error) {
	in.Normalize()
	if verr := validation.Struct(&in); verr != nil {
		return nil, verr
	}
	if in.Action == "reject" && in.Reason == nil {
		return nil, apperr.Validation("invalid request body",
			apperr.FieldError{Field: "reason", Message: "is required when rejecting"})
	}

	a, err := s.loadAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	existing, err := s.items(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	var item *models.ComplianceItem
	for i := range existing {
		if existing[i].Type == models.ComplianceType(in.ComplianceType) {
			item = &existing[i]
			break
		}
	}
	if item == nil {
		return nil, apperr.NotFound("compliance item")
	}

	now := s.now().UTC()
	action := audit.ActionComplianceVerify
	if in.Action == "verify" {
		item.MarkVerified(adminID, now)
	} else {
		action = audit.ActionComplianceReject
		item.ClearVerification()
		item.RejectionReason = in.Reason
	}
	if in.Notes != nil {
		item.Notes = in.Notes
	}
	item.UpdatedAt = now

	stored, err := s.store.UpsertCompliance(ctx, []models.ComplianceItem{*item})
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("update compliance: %w", err))
	}
	if len(stored) != 1 {
		return nil, apperr.Internal(fmt.Errorf("update compliance: expected 1 row, got %d", len(stored)))
	}
	metrics.ComplianceChanges.WithLabelValues(in.Action).Inc()

	details := map[string]interface{}{"type": in.ComplianceType}
	if in.Reason != nil {
		details["reason"] = *in.Reason
	}
	s.audit.Log(ctx, audit.LogEntry{Action: action, ResourceType: "agency", ResourceID: &agencyID, Details: details})

	if in.Action == "reject" {
		s.notifyRejected(ctx, a, item.Type, *in.Reason)
	}

	out := s.decorate(ctx, stored)
	return &out[0], nil
}

func (s *Service) notifyRejected(ctx context.Context, a *models.Agency, t models.ComplianceType, reason string) {
	if !a.IsClaimed || a.ClaimedBy == nil {
		return
	}
	owner, err := s.profiles.Get(ctx, *a.ClaimedBy)
	if err != nil || owner == nil || owner.Email == "" {
		slog.Warn("no owner email for compliance rejection", "agency_id", a.ID, "error", err)
		return
	}
	err = s.notifier.EnqueueComplianceRejected(ctx, queue.ComplianceRejectedPayload{
		AgencyID:       a.ID.String(),
		AgencyName:     a.Name,
		To:             owner.Email,
		ComplianceType: string(t),
		Reason:         reason,
	})
	if err != nil {
		slog.Warn("enqueue compliance rejection notification", "agency_id", a.ID, "error", err)
	}
}

// AttachDocument stores an uploaded certificate for one compliance type. A
// new document always needs fresh verification.
func (s *Service) AttachDocument(ctx context.Context, agencyID uuid.UUID, complianceType string, file io.Reader, actor *models.Profile) (*Item, error) {
	t := models.ComplianceType(complianceType)
	if !t.Valid() {
		return nil, apperr.InvalidParams("invalid parameters",
			apperr.FieldError{Field: "type", Message: "must be a known compliance type"})
	}

	a, err := s.loadAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if !agency.CanManage(a, actor) {
		return nil, apperr.Forbidden("only the agency owner or an admin can upload documents")
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, apperr.Validation("could not read upload", apperr.FieldError{Field: "file", Message: err.Error()})
	}
	if len(data) == 0 {
		return nil, apperr.Validation("invalid upload", apperr.FieldError{Field: "file", Message: "is required"})
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, apperr.Validation("invalid upload",
			apperr.FieldError{Field: "file", Message: fmt.Sprintf("must be at most %d MB", s.cfg.MaxUploadBytes>>20)})
	}

	doc, err := textextract.Inspect(data)
	if errors.Is(err, textextract.ErrUnsupportedType) {
		return nil, apperr.Validation("invalid upload", apperr.FieldError{Field: "file", Message: "must be a PDF, PNG or JPEG"})
	}
	if err != nil {
		return nil, apperr.Validation("invalid upload", apperr.FieldError{Field: "file", Message: "could not be read as a " + contentLabel(data)})
	}

	path := fmt.Sprintf("agencies/%s/%s/%s.%s", agencyID, t, uuid.New(), doc.Ext)
	if err := s.files.Upload(ctx, s.cfg.Bucket, path, bytes.NewReader(data), doc.ContentType); err != nil {
		return nil, apperr.Storage(fmt.Errorf("upload compliance document: %w", err))
	}

	existing, err := s.items(ctx, agencyID)
	if err != nil {
		s.removeObject(ctx, path)
		return nil, err
	}
	now := s.now().UTC()
	item := models.ComplianceItem{ID: uuid.New(), AgencyID: agencyID, Type: t, IsActive: true, CreatedAt: now}
	var previous *string
	for _, it := range existing {
		if it.Type == t {
			item = it
			previous = it.DocumentURL
			break
		}
	}
	item.DocumentURL = &path
	item.ClearVerification()
	item.RejectionReason = nil
	item.UpdatedAt = now

	stored, err := s.store.UpsertCompliance(ctx, []models.ComplianceItem{item})
	if err != nil {
		s.removeObject(ctx, path)
		return nil, apperr.Database(fmt.Errorf("attach compliance document: %w", err))
	}
	if previous != nil && isObjectPath(*previous) {
		s.removeObject(ctx, *previous)
	}
	metrics.ComplianceChanges.WithLabelValues("upload").Inc()

	s.audit.Log(ctx, audit.LogEntry{
		Action:       audit.ActionComplianceUpload,
		ResourceType: "agency",
		ResourceID:   &agencyID,
		Details:      map[string]interface{}{"type": string(t), "path": path, "pages": doc.Pages},
	})

	out := s.decorate(ctx, stored)
	return &out[0], nil
}

func (s *Service) removeObject(ctx context.Context, path string) {
	if err := s.files.Delete(ctx, s.cfg.Bucket, path); err != nil {
		slog.Warn("delete compliance document", "path", path, "error", err)
	}
	_ = s.cache.Delete(ctx, signedURLKey(s.cfg.Bucket, path))
}

func (s *Service) decorate(ctx context.Context, items []models.ComplianceItem) []Item {
	now := s.now()
	out := make([]Item, len(items))
	for i := range items {
		out[i] = Item{
			ComplianceItem:      items[i],
			Status:              DeriveStatus(&items[i], now),
			DaysUntilExpiration: DaysUntilExpiration(&items[i], now),
		}
		if items[i].HasDocument() {
			out[i].DocumentSignedURL = s.signedURL(ctx, *items[i].DocumentURL)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return typeOrder(out[a].Type) < typeOrder(out[b].Type) })
	return out
}

// signedURL returns a download link for a stored document, reusing a cached
// link while it still has a tenth of its lifetime left. External URLs are
// passed through.
func (s *Service) signedURL(ctx context.Context, path string) *string {
	if !isObjectPath(path) {
		return &path
	}
	key := signedURLKey(s.cfg.Bucket, path)

	var cached string
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("signed url cache read", "error", err)
	}

	url, err := s.files.CreateSignedURL(ctx, s.cfg.Bucket, path, s.cfg.SignedURLTTL)
	if err != nil {
		slog.Warn("create signed url", "path", path, "error", err)
		return nil
	}
	if err := s.cache.Set(ctx, key, url, s.cfg.SignedURLTTL-s.cfg.SignedURLTTL/10); err != nil {
		slog.Warn("signed url cache write", "error", err)
	}
	return &url
}

func signedURLKey(bucket, path string) string {
	return "signed-url:" + bucket + "/" + path
}

func isObjectPath(p string) bool {
	return p != "" && !strings.HasPrefix(p, "http://") && !strings.HasPrefix(p, "https://")
}

func typeOrder(t models.ComplianceType) int {
	for i, ct := range models.ComplianceTypes {
		if ct == t {
			return i
		}
	}
	return len(models.ComplianceTypes)
}

func contentLabel(data []byte) string {
	if strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF-") {
		return "PDF"
	}
	return "image"
}
