package cleanup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/cleanup"
	"github.com/nikhilbhutani/agencyhub/internal/models"
	"github.com/nikhilbhutani/agencyhub/internal/store/memory"
	"github.com/nikhilbhutani/agencyhub/internal/validation"
)

type brokenAuth struct{}

func (brokenAuth) FindUserIDByEmail(context.Context, string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, errors.New("auth api unavailable")
}

func (brokenAuth) DeleteUser(context.Context, uuid.UUID) error { return nil }

func TestPurge(t *testing.T) {
	st := memory.New()
	id := uuid.New()
	st.AddUser(id, "gone@example.com")
	st.PutProfile(models.Profile{ID: id, Email: "gone@example.com", Role: models.RoleUser})
	svc := cleanup.NewService(st, st, audit.NewService(st))

	res, err := svc.Purge(context.Background(), validation.UserCleanupInput{Email: " Gone@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, &cleanup.Result{Email: "Gone@Example.com", Identities: 1, Profiles: 1, Users: 1, Errors: []string{}}, res)

	res, err = svc.Purge(context.Background(), validation.UserCleanupInput{Email: "gone@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Identities+res.Profiles+res.Users)
	assert.Empty(t, res.Errors)

	logs, _, err := st.ListAuditLogs(context.Background(), audit.Query{Action: audit.ActionUserCleanup, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestPurgeContinuesPastFailures(t *testing.T) {
	st := memory.New()
	id := uuid.New()
	st.PutProfile(models.Profile{ID: id, Email: "gone@example.com", Role: models.RoleUser})

	res, err := cleanup.NewService(st, brokenAuth{}, audit.NewService(st)).
		Purge(context.Background(), validation.UserCleanupInput{Email: "gone@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profiles)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "users: step failed", res.Errors[0])
	assert.NotContains(t, res.Errors[0], "auth api unavailable")

	res, err = cleanup.NewService(st, nil, audit.NewService(st)).
		Purge(context.Background(), validation.UserCleanupInput{Email: "gone@example.com"})
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1)
}

func TestPurgeValidatesEmail(t *testing.T) {
	st := memory.New()
	_, err := cleanup.NewService(st, st, audit.NewService(st)).
		Purge(context.Background(), validation.UserCleanupInput{Email: "nope"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

type failingIdentities struct {
	*memory.Store
}

func (failingIdentities) DeleteIdentitiesByEmail(context.Context, string) (int, error) {
	return 0, errors.New(`ERROR: permission denied for table identities (SQLSTATE 42501)`)
}

func TestPurgeHidesStoreErrors(t *testing.T) {
	st := memory.New()
	st.PutProfile(models.Profile{ID: uuid.New(), Email: "gone@example.com", Role: models.RoleUser})

	res, err := cleanup.NewService(failingIdentities{st}, st, audit.NewService(st)).
		Purge(context.Background(), validation.UserCleanupInput{Email: "gone@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profiles)
	assert.Equal(t, []string{"identities: step failed"}, res.Errors)
	for _, e := range res.Errors {
		assert.NotContains(t, e, "SQLSTATE")
	}
}
