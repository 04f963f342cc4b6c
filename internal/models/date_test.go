package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2030, 6, 1, 18, 45, 0, 0, time.UTC))
	b, err := json.Marshal(struct {
		Expires *Date `json:"expires"`
	}{&d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expires":"2030-06-01"}`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2030-06-01"`), &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"2030-06-01T00:00:00Z"`), &back))
}

func TestDatePgtype(t *testing.T) {
	var d Date
	require.NoError(t, d.ScanDate(pgtype.Date{Time: time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), Valid: true}))
	assert.Equal(t, "2027-01-31", d.String())

	v, err := d.DateValue()
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, d.Time(), v.Time)

	assert.Error(t, d.ScanDate(pgtype.Date{}))
}
