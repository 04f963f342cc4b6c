package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/store"
)

func seedAgency(t *testing.T, s *Store, name, slug string, active bool, at time.Time) *models.Agency {
	t.Helper()
	a := &models.Agency{ID: uuid.New(), Name: name, Slug: slug, IsActive: active, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, s.InsertAgency(context.Background(), a))
	return a
}

func TestListAgenciesFiltersAndOrders(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedAgency(t, s, "Acme Construction", "acme-construction", true, base)
	seedAgency(t, s, "Bolt Staffing", "bolt-staffing", false, base.Add(time.Hour))
	seedAgency(t, s, "Acme Labor", "acme-labor", true, base.Add(2*time.Hour))

	all, total, err := s.ListAgencies(ctx, agency.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Acme Labor", all[0].Name)
	assert.Equal(t, "Acme Construction", all[2].Name)

	acme, total, err := s.ListAgencies(ctx, agency.Filter{Search: "ACME", Status: agency.StatusActive, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, acme, 1)
	assert.Equal(t, "Acme Labor", acme[0].Name)

	inactive, _, err := s.ListAgencies(ctx, agency.Filter{Status: agency.StatusInactive, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Bolt Staffing", inactive[0].Name)

	past, total, err := s.ListAgencies(ctx, agency.Filter{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, past)
}

func TestInsertAgencyRejectsDuplicateSlug(t *testing.T) {
	s := New()
	seedAgency(t, s, "Acme", "acme", true, time.Now())
	err := s.InsertAgency(context.Background(), &models.Agency{ID: uuid.New(), Name: "Acme 2", Slug: "acme"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrDuplicateName)

	err = s.InsertAgency(context.Background(), &models.Agency{ID: uuid.New(), Name: "ACME", Slug: "acme-2"})
	assert.ErrorIs(t, err, store.ErrDuplicateName)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestApproveClaimPromotesUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedAgency(t, s, "Acme", "acme", true, time.Now())
	user := uuid.New()
	s.PutProfile(models.Profile{ID: user, Role: models.RoleUser, Email: "owner@acme.example"})

	c := &models.ClaimRequest{ID: uuid.New(), AgencyID: a.ID, UserID: user, Status: models.ClaimStatusPending}
	require.NoError(t, s.InsertClaim(ctx, c))
	assert.ErrorIs(t, s.InsertClaim(ctx, &models.ClaimRequest{ID: uuid.New(), AgencyID: a.ID, UserID: user, Status: models.ClaimStatusPending}), store.ErrDuplicate)

	admin := uuid.New()
	at := time.Now().UTC()
	got, err := s.ApproveClaim(ctx, c.ID, admin, at, func(*models.ClaimRequest, *models.Agency) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, got.Status)
	assert.Equal(t, "Acme", got.AgencyName)

	stored, err := s.GetAgency(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsClaimed)
	assert.Equal(t, user, *stored.ClaimedBy)

	p, err := s.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgencyOwner, p.Role)
}

func TestApproveClaimCheckAbortsWrite(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedAgency(t, s, "Acme", "acme", true, time.Now())
	c := &models.ClaimRequest{ID: uuid.New(), AgencyID: a.ID, UserID: uuid.New(), Status: models.ClaimStatusPending}
	require.NoError(t, s.InsertClaim(ctx, c))

	refuse := assert.AnError
	_, err := s.ApproveClaim(ctx, c.ID, uuid.New(), time.Now(), func(*models.ClaimRequest, *models.Agency) error { return refuse })
	assert.ErrorIs(t, err, refuse)

	stored, err := s.GetAgency(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsClaimed)
	got, err := s.GetClaim(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, got.Status)
}

func TestUpsertComplianceKeepsRowIdentity(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedAgency(t, s, "Acme", "acme", true, time.Now())

	first := models.ComplianceItem{ID: uuid.New(), AgencyID: a.ID, Type: models.ComplianceBonded, IsActive: true}
	_, err := s.UpsertCompliance(ctx, []models.ComplianceItem{first})
	require.NoError(t, err)

	second := models.ComplianceItem{ID: uuid.New(), AgencyID: a.ID, Type: models.ComplianceBonded, IsActive: false}
	out, err := s.UpsertCompliance(ctx, []models.ComplianceItem{second, {ID: uuid.New(), AgencyID: a.ID, Type: models.ComplianceOSHACertified}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, out[0].ID)

	items, err := s.ListCompliance(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ComplianceOSHACertified, items[0].Type)
	assert.False(t, items[1].IsActive)

	_, err = s.UpsertCompliance(ctx, []models.ComplianceItem{{AgencyID: uuid.New(), Type: models.ComplianceBonded}})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuditLogQuery(t *testing.T) {
	s := New()
	ctx := context.Background()
	actor := uuid.New()
	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertAuditLog(ctx, &models.AuditLog{ID: uuid.New(), ActorID: &actor, Action: "agency.create", CreatedAt: day}))
	require.NoError(t, s.InsertAuditLog(ctx, &models.AuditLog{ID: uuid.New(), Action: "claim.approve", CreatedAt: day.Add(24 * time.Hour)}))

	logs, total, err := s.ListAuditLogs(ctx, audit.Query{ActorID: &actor, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "agency.create", logs[0].Action)

	start := day.Add(time.Hour)
	logs, _, err = s.ListAuditLogs(ctx, audit.Query{StartDate: &start, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "claim.approve", logs[0].Action)
}

func TestDeleteByEmailIgnoresCase(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := uuid.New()
	s.AddUser(id, "Gone@Example.com")
	s.PutProfile(models.Profile{ID: id, Email: "gone@example.com", Role: models.RoleUser})

	n, err := s.DeleteIdentitiesByEmail(ctx, "gone@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.DeleteProfilesByEmail(ctx, "GONE@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, ok, err := s.FindUserIDByEmail(ctx, "gone@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, found)
	require.NoError(t, s.DeleteUser(ctx, id))
	assert.ErrorIs(t, s.DeleteUser(ctx, id), store.ErrNotFound)
}
