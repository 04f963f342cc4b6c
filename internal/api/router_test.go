package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/agencyhub/internal/auth"
	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/store/memory"
)

const testSecret = "router-test-secret-with-at-least-32-characters"

type fixture struct {
	handler http.Handler
	store   *memory.Store
	outbox  *memory.Outbox
	admin   uuid.UUID
	user    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{RateLimitRPS: 1000, RateLimitBurst: 1000},
		Auth:     config.AuthConfig{JWTSecret: testSecret},
		Storage:  config.StorageConfig{Bucket: "compliance-documents", SignedURLTTL: time.Hour, MaxUploadBytes: 10 << 20},
		Agencies: config.AgencyConfig{SlugMaxAttempts: 3, PageSize: 20, MaxPageSize: 100},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	st := memory.New()
	f := &fixture{store: st, outbox: &memory.Outbox{}, admin: uuid.New(), user: uuid.New()}
	st.AddUser(f.admin, "admin@example.com")
	st.PutProfile(models.Profile{ID: f.admin, Email: "admin@example.com", Role: models.RoleAdmin})
	st.AddUser(f.user, "user@example.com")
	st.PutProfile(models.Profile{ID: f.user, Email: "user@example.com", Role: models.RoleUser})

	rt := NewRouter(cfg, Deps{Store: st, Files: memory.NewFiles(), Notifier: f.outbox, AuthAdmin: st})
	t.Cleanup(rt.Close)
	f.handler = rt.Setup()
	return f
}

func token(t *testing.T, sub uuid.UUID) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: "someone@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (f *fixture) do(t *testing.T, method, path string, as uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+token(t, as))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dst != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/readyz", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCreateAgency(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "Acme Construction"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a models.Agency
	decode(t, rec, &a)
	assert.Equal(t, "acme-construction", a.Slug)
	assert.True(t, a.IsActive)

	rec = f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "acme construction"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.user, map[string]string{"name": "Acme Construction"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec, nil).Error.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/claims", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec, nil).Error.Code)
}

func TestEveryAdminRouteRefusesNonAdmins(t *testing.T) {
	f := newFixture(t)
	id := uuid.NewString()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/agencies"},
		{http.MethodPost, "/api/admin/agencies"},
		{http.MethodPost, "/api/admin/agencies/" + id + "/status"},
		{http.MethodGet, "/api/admin/agencies/" + id + "/compliance"},
		{http.MethodPut, "/api/admin/agencies/" + id + "/compliance"},
		{http.MethodPost, "/api/admin/agencies/" + id + "/compliance/verify"},
		{http.MethodGet, "/api/admin/claims"},
		{http.MethodPost, "/api/admin/claims/" + id + "/approve"},
		{http.MethodPost, "/api/admin/claims/" + id + "/reject"},
		{http.MethodPost, "/api/admin/claims/" + id + "/review"},
		{http.MethodGet, "/api/admin/labor-requests"},
		{http.MethodGet, "/api/admin/audit"},
		{http.MethodPost, "/api/admin/users/cleanup"},
	}
	bodies := map[string]interface{}{
		"valid shape": map[string]interface{}{"name": "Acme Construction", "active": true, "email": "x@example.com"},
		"junk":        map[string]interface{}{"items": "nope", "reason": 42, "unknown": []int{1}},
		"empty":       nil,
	}
	for _, rt := range routes {
		for name, body := range bodies {
			t.Run(rt.method+" "+rt.path+" "+name, func(t *testing.T) {
				rec := f.do(t, rt.method, rt.path, f.user, body)
				assert.Equal(t, http.StatusForbidden, rec.Code)
				assert.Equal(t, "FORBIDDEN", decode(t, rec, nil).Error.Code)
			})
		}
	}
}

func TestUserRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/claims", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicAgencyLookup(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "Acme Construction"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/agencies/acme-construction", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/agencies/missing", uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClaimFlow(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "Acme Construction"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var a models.Agency
	decode(t, rec, &a)

	rec = f.do(t, http.MethodPost, "/api/claims/request", f.user, map[string]string{
		"agency_id":           a.ID.String(),
		"business_email":      "owner@acme.example",
		"phone_number":        "+1 555 010 2000",
		"position_title":      "Owner",
		"verification_method": "email",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.ClaimRequest
	decode(t, rec, &c)

	rec = f.do(t, http.MethodPost, "/api/admin/claims/"+c.ID.String()+"/approve", f.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &c)
	assert.Equal(t, models.ClaimStatusApproved, c.Status)

	p, err := f.store.GetProfile(t.Context(), f.user)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgencyOwner, p.Role)
	assert.Len(t, f.outbox.ClaimDecisions, 1)

	rec = f.do(t, http.MethodPost, "/api/admin/claims/"+c.ID.String()+"/reject", f.admin, map[string]string{"reason": "another claim was already approved for this agency"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestComplianceUpsertRecordsVerifier(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "Acme Construction"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var a models.Agency
	decode(t, rec, &a)

	rec = f.do(t, http.MethodPut, "/api/admin/agencies/"+a.ID.String()+"/compliance", f.admin, map[string]interface{}{
		"items": []map[string]interface{}{
			{"type": "osha_certified", "isActive": true, "isVerified": true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Items []struct {
			Type       string     `json:"compliance_type"`
			VerifiedBy *uuid.UUID `json:"verified_by"`
			VerifiedAt *time.Time `json:"verified_at"`
		} `json:"items"`
	}
	decode(t, rec, &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "osha_certified", out.Items[0].Type)
	require.NotNil(t, out.Items[0].VerifiedBy)
	assert.Equal(t, f.admin, *out.Items[0].VerifiedBy)
	require.NotNil(t, out.Items[0].VerifiedAt)
	assert.WithinDuration(t, time.Now(), *out.Items[0].VerifiedAt, time.Minute)

	rec = f.do(t, http.MethodPut, "/api/admin/agencies/not-a-uuid/compliance", f.admin, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMS", decode(t, rec, nil).Error.Code)
}

func TestInvalidPagination(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/admin/labor-requests?limit=abc", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMS", decode(t, rec, nil).Error.Code)
}

func TestComplianceDatesRoundTrip(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/admin/agencies", f.admin, map[string]string{"name": "Acme Construction"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var a models.Agency
	decode(t, rec, &a)
	path := "/api/admin/agencies/" + a.ID.String() + "/compliance"

	rec = f.do(t, http.MethodPut, path, f.admin, map[string]interface{}{
		"items": []map[string]interface{}{
			{"type": "workers_comp", "isActive": true, "expirationDate": "2030-06-01"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, path, f.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Items []struct {
			Type           string `json:"compliance_type"`
			ExpirationDate string `json:"expiration_date"`
		} `json:"items"`
	}
	decode(t, rec, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "2030-06-01", got.Items[0].ExpirationDate)

	rec = f.do(t, http.MethodPut, path, f.admin, map[string]interface{}{
		"items": []map[string]interface{}{
			{"type": got.Items[0].Type, "isActive": true, "expirationDate": got.Items[0].ExpirationDate},
		},
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLaborStartDateIsDateOnly(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/labor-requests", uuid.Nil, map[string]interface{}{
		"company_name":     "Gulf Coast Builders",
		"contact_name":     "Sam Ortiz",
		"contact_email":    "sam@gulfcoast.example",
		"contact_phone":    "713-555-0100",
		"project_name":     "Refinery Turnaround",
		"project_location": "Pasadena, TX",
		"start_date":       "2031-03-02",
		"crafts": []map[string]interface{}{
			{"trade": "Pipefitter", "region": "Gulf Coast", "experience_level": "journeyman", "worker_count": 4, "schedule": "day"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		StartDate string `json:"start_date"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "2031-03-02", created.StartDate)
}
