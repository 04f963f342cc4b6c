package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/agencyhub/internal/apperr"
)

func boolp(b bool) *bool    { return &b }
func strp(s string) *string { return &s }
func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"2026-02-28", nil},
		{"2028-02-29", nil},
		{"2000-02-29", nil},
		{"2026-12-31", nil},
		{"2026-02-30", ErrCalendarDate},
		{"2026-02-29", ErrCalendarDate},
		{"1900-02-29", ErrCalendarDate},
		{"2026-04-31", ErrCalendarDate},
		{"2026-13-01", ErrCalendarDate},
		{"2026-00-10", ErrCalendarDate},
		{"2026-01-00", ErrCalendarDate},
		{"2026-1-01", ErrDateFormat},
		{"26-01-01", ErrDateFormat},
		{"2026/01/01", ErrDateFormat},
		{"2026-01-01T00:00:00Z", ErrDateFormat},
		{"", ErrDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDateAcceptsEveryDayOfAYear(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for d.Year() == 2024 {
		_, err := ParseDate(d.Format("2006-01-02"))
		require.NoError(t, err, d.Format("2006-01-02"))
		d = d.AddDate(0, 0, 1)
	}
}

func TestCreateAgencyInput(t *testing.T) {
	in := CreateAgencyInput{Name: "  Acme Construction  "}
	in.Normalize()
	assert.Equal(t, "Acme Construction", in.Name)
	assert.Nil(t, Struct(&in))

	short := CreateAgencyInput{Name: "A"}
	err := Struct(&short)
	require.NotNil(t, err)
	assert.Equal(t, apperr.CodeValidation, err.Code)
	assert.Equal(t, []apperr.FieldError{{Field: "name", Message: "must be at least 2 characters"}}, err.Details)

	bad := CreateAgencyInput{
		Name:          "Acme",
		Website:       strp("not a url"),
		EmployeeCount: strp("lots"),
		Email:         strp("nope"),
	}
	err = Struct(&bad)
	require.NotNil(t, err)
	fields := map[string]string{}
	for _, d := range err.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be a valid URL", fields["website"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields["employee_count"], "must be one of")

	future := time.Now().Year() + 1
	tooNew := CreateAgencyInput{Name: "Acme", FoundedYear: &future}
	err = Struct(&tooNew)
	require.NotNil(t, err)
	assert.Equal(t, "founded_year", err.Details[0].Field)
}

func TestClaimRequestInput(t *testing.T) {
	valid := ClaimRequestInput{
		AgencyID:           "6f1c1f5e-7d0b-4f7e-9a43-2f0e0c7b9c11",
		BusinessEmail:      " Owner@Acme.Example ",
		PhoneNumber:        "+1 (555) 010-0100",
		PositionTitle:      "Operations Manager",
		VerificationMethod: "email",
	}
	valid.Normalize()
	assert.Equal(t, "owner@acme.example", valid.BusinessEmail)
	assert.Nil(t, Struct(&valid))

	invalid := valid
	invalid.VerificationMethod = "carrier pigeon"
	invalid.PhoneNumber = "12"
	invalid.AgencyID = "acme"
	err := Struct(&invalid)
	require.NotNil(t, err)
	assert.Len(t, err.Details, 3)
}

func TestClaimRejectInput(t *testing.T) {
	in := ClaimRejectInput{Reason: "   too short        "}
	in.Normalize()
	err := Struct(&in)
	require.NotNil(t, err)
	assert.Equal(t, "reason", err.Details[0].Field)

	in = ClaimRejectInput{Reason: strings.Repeat("x", MinRejectionReason)}
	assert.Nil(t, Struct(&in))
}

func TestComplianceUpdateInput(t *testing.T) {
	valid := ComplianceUpdateInput{Items: []ComplianceItemInput{
		{Type: "osha_certified", IsActive: boolp(true), IsVerified: boolp(true)},
		{Type: "workers_comp", IsActive: boolp(false), ExpirationDate: strp("2027-06-30")},
	}}
	assert.Nil(t, Params(&valid))

	invalid := ComplianceUpdateInput{Items: []ComplianceItemInput{
		{Type: "osha_certified", IsActive: boolp(true), ExpirationDate: strp("2026-02-30")},
		{Type: "unicorn_wrangling"},
	}}
	err := Params(&invalid)
	require.NotNil(t, err)
	assert.Equal(t, apperr.CodeInvalidParams, err.Code)

	fields := map[string]string{}
	for _, d := range err.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "is not a real calendar date", fields["items[0].expirationDate"])
	assert.Equal(t, "must be a known compliance type", fields["items[1].type"])
	assert.Equal(t, "is required", fields["items[1].isActive"])

	empty := ComplianceUpdateInput{}
	assert.NotNil(t, Params(&empty))
}

func TestDecodeJSONTypeMismatch(t *testing.T) {
	var in ComplianceUpdateInput
	err := DecodeJSON(strings.NewReader(`{"items":[{"type":"osha_certified","isActive":"yes"}]}`), &in, apperr.CodeInvalidParams)
	require.NotNil(t, err)
	assert.Equal(t, apperr.CodeInvalidParams, err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "must be a boolean", err.Details[0].Message)

	err = DecodeJSON(strings.NewReader(``), &in, apperr.CodeValidation)
	require.NotNil(t, err)
	assert.Equal(t, apperr.CodeValidation, err.Code)

	err = DecodeJSON(strings.NewReader(`{"items": [`), &in, apperr.CodeValidation)
	require.NotNil(t, err)
	assert.Equal(t, "request body must be valid JSON", err.Message)
}

func TestLaborRequestInput(t *testing.T) {
	craft := CraftInput{
		Trade:           "Electrician",
		Region:          "Gulf Coast",
		ExperienceLevel: "journeyman",
		WorkerCount:     12,
		Schedule:        "day",
		PayRateMin:      decp("32.50"),
		PayRateMax:      decp("41.00"),
	}
	in := LaborRequestInput{
		CompanyName:     "Bayou Builders",
		ContactName:     "Dana Ortiz",
		ContactEmail:    "dana@bayou.example",
		ContactPhone:    "555-010-0199",
		ProjectName:     "Refinery turnaround",
		ProjectLocation: "Baytown, TX",
		StartDate:       "2026-11-02",
		Crafts:          []CraftInput{craft},
	}
	assert.Nil(t, Struct(&in))

	inverted := craft
	inverted.PayRateMin = decp("50")
	inverted.PayRateMax = decp("40")
	in.Crafts = []CraftInput{inverted}
	err := Struct(&in)
	require.NotNil(t, err)
	assert.Equal(t, "crafts[0].pay_rate_max", err.Details[0].Field)
	assert.Equal(t, "must be greater than or equal to pay_rate_min", err.Details[0].Message)

	negative := craft
	negative.PayRateMin = decp("-1")
	in.Crafts = []CraftInput{negative}
	require.NotNil(t, Struct(&in))

	in.Crafts = make([]CraftInput, 11)
	for i := range in.Crafts {
		in.Crafts[i] = craft
	}
	err = Struct(&in)
	require.NotNil(t, err)
	assert.Equal(t, "crafts", err.Details[0].Field)
	assert.Equal(t, "must contain at most 10 items", err.Details[0].Message)

	in.Crafts = nil
	require.NotNil(t, Struct(&in))
}

func TestTrim(t *testing.T) {
	assert.Nil(t, Trim(nil))
	assert.Nil(t, Trim(strp("   ")))
	assert.Equal(t, "x", *Trim(strp(" x ")))
}
