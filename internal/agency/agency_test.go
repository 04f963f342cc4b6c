package agency_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/profile"
	"github.com/nikhilbhutani/agencyhub/internal/store/memory"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func newService(st *memory.Store) *agency.Service {
	return agency.NewService(st, profile.NewService(st), audit.NewService(st),
		config.AgencyConfig{SlugMaxAttempts: 3, PageSize: 20, MaxPageSize: 100})
}

func TestCreateAgency(t *testing.T) {
	st := memory.New()
	svc := newService(st)
	ctx := context.Background()
	admin := uuid.New()

	a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "  Acme Construction "}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Acme Construction", a.Name)
	assert.Equal(t, "acme-construction", a.Slug)
	assert.True(t, a.IsActive)
	assert.False(t, a.IsClaimed)
	assert.Equal(t, admin, *a.CreatedBy)

	logs, _, err := st.ListAuditLogs(ctx, audit.Query{Action: audit.ActionAgencyCreate, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, a.ID, *logs[0].ResourceID)
}

func TestCreateAgencyDuplicateName(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme Construction"}, uuid.New())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validation.CreateAgencyInput{Name: "ACME construction"}, uuid.New())
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	assert.Equal(t, 409, ae.Status)
}

func TestCreateAgencySlugSuffix(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()

	names := []string{"Acme Construction", "Acme Construction!", "Acme  Construction", "Acme-Construction"}
	want := []string{"acme-construction", "acme-construction-2", "acme-construction-3"}
	for i, want := range want {
		a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: names[i]}, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, want, a.Slug)
	}

	_, err := svc.Create(ctx, validation.CreateAgencyInput{Name: names[3]}, uuid.New())
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

// nameRaceStore misses the name pre-check, as when a concurrent create of
// the same name commits between the check and the insert.
type nameRaceStore struct {
	*memory.Store
	inserts int
}

func (s *nameRaceStore) AgencyNameExists(context.Context, string) (bool, error) {
	return false, nil
}

func (s *nameRaceStore) InsertAgency(ctx context.Context, a *models.Agency) error {
	s.inserts++
	return s.Store.InsertAgency(ctx, a)
}

func TestCreateAgencyNameRace(t *testing.T) {
	st := &nameRaceStore{Store: memory.New()}
	svc := agency.NewService(st, profile.NewService(st), audit.NewService(st),
		config.AgencyConfig{SlugMaxAttempts: 3, PageSize: 20, MaxPageSize: 100})
	ctx := context.Background()

	_, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme Construction"}, uuid.New())
	require.NoError(t, err)
	st.inserts = 0

	_, err = svc.Create(ctx, validation.CreateAgencyInput{Name: "ACME CONSTRUCTION"}, uuid.New())
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 409, ae.Status)
	assert.Equal(t, "an agency with this name already exists", ae.Message)
	assert.Equal(t, 1, st.inserts)
}

func TestCreateAgencyValidation(t *testing.T) {
	svc := newService(memory.New())
	_, err := svc.Create(context.Background(), validation.CreateAgencyInput{Name: "A", Website: strp("not a url")}, uuid.New())

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)
	fields := map[string]bool{}
	for _, d := range ae.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["website"])
}

func TestParseFilter(t *testing.T) {
	svc := newService(memory.New())

	f, err := svc.ParseFilter(url.Values{"search": {" acme "}, "status": {"active"}, "limit": {"5"}, "offset": {"10"}})
	require.NoError(t, err)
	assert.Equal(t, agency.Filter{Search: "acme", Status: "active", Claimed: "all", Limit: 5, Offset: 10}, f)

	f, err = svc.ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 20, f.Limit)

	_, err = svc.ParseFilter(url.Values{"status": {"gone"}, "limit": {"500"}, "offset": {"-1"}})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.CodeInvalidParams, ae.Code)
	assert.Len(t, ae.Details, 3)
}

func TestListAttachesOwner(t *testing.T) {
	st := memory.New()
	svc := newService(st)
	ctx := context.Background()

	owner := models.Profile{ID: uuid.New(), Role: models.RoleAgencyOwner, Email: "owner@acme.example"}
	st.PutProfile(owner)
	a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme"}, uuid.New())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validation.CreateAgencyInput{Name: "Bolt"}, uuid.New())
	require.NoError(t, err)

	c := &models.ClaimRequest{ID: uuid.New(), AgencyID: a.ID, UserID: owner.ID, Status: models.ClaimStatusPending}
	require.NoError(t, st.InsertClaim(ctx, c))
	_, err = st.ApproveClaim(ctx, c.ID, uuid.New(), c.CreatedAt, func(*models.ClaimRequest, *models.Agency) error { return nil })
	require.NoError(t, err)

	page, err := svc.List(ctx, agency.Filter{Status: agency.FilterAll, Claimed: agency.ClaimedYes, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Agencies, 1)
	require.NotNil(t, page.Agencies[0].Owner)
	assert.Equal(t, "owner@acme.example", page.Agencies[0].Owner.Email)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestPublicLookupsHideInactive(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()
	admin := uuid.New()

	a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme"}, admin)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validation.CreateAgencyInput{Name: "Bolt"}, admin)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, a.ID, validation.AgencyStatusInput{Active: boolp(false)}, admin)
	require.NoError(t, err)

	_, err = svc.GetBySlug(ctx, "acme")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	got, err := svc.GetBySlug(ctx, "bolt")
	require.NoError(t, err)
	assert.Equal(t, "Bolt", got.Name)

	page, err := svc.PublicList(ctx, agency.Filter{Status: agency.FilterAll, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Agencies, 1)
	assert.Equal(t, "Bolt", page.Agencies[0].Name)
}

func TestSetStatus(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()
	admin := uuid.New()

	_, err := svc.SetStatus(ctx, uuid.New(), validation.AgencyStatusInput{Active: boolp(true)}, admin)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme"}, admin)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, a.ID, validation.AgencyStatusInput{}, admin)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	got, err := svc.SetStatus(ctx, a.ID, validation.AgencyStatusInput{Active: boolp(false)}, admin)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, admin, *got.LastEditedBy)
}

func TestUpdateProfile(t *testing.T) {
	st := memory.New()
	svc := newService(st)
	ctx := context.Background()

	a, err := svc.Create(ctx, validation.CreateAgencyInput{Name: "Acme", Phone: strp("555-0100")}, uuid.New())
	require.NoError(t, err)

	stranger := &models.Profile{ID: uuid.New(), Role: models.RoleUser}
	_, err = svc.UpdateProfile(ctx, a.ID, validation.UpdateAgencyProfileInput{Description: strp("x")}, stranger)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	admin := &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}
	got, err := svc.UpdateProfile(ctx, a.ID, validation.UpdateAgencyProfileInput{
		Description: strp("Skilled trades"),
		Website:     strp("https://acme.example"),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", *got.Phone)
	assert.Equal(t, "Skilled trades", *got.Description)
	assert.Equal(t, 33, got.ProfileCompletionPercentage)
	assert.Equal(t, admin.ID, *got.LastEditedBy)

	stored, err := st.GetAgency(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example", *stored.Website)
	assert.Equal(t, 33, stored.ProfileCompletionPercentage)
}

func TestCanManage(t *testing.T) {
	owner := uuid.New()
	a := &models.Agency{IsClaimed: true, ClaimedBy: &owner}

	assert.False(t, agency.CanManage(a, nil))
	assert.True(t, agency.CanManage(a, &models.Profile{ID: owner, Role: models.RoleAgencyOwner}))
	assert.True(t, agency.CanManage(a, &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, agency.CanManage(a, &models.Profile{ID: uuid.New(), Role: models.RoleAgencyOwner}))
	assert.False(t, agency.CanManage(&models.Agency{}, &models.Profile{ID: owner}))
}
