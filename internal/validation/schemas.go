package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type CreateAgencyInput struct {
	Name              string  `json:"name" validate:"required,min=2,max=200"`
	Description       *string `json:"description" validate:"omitempty,max=2000"`
	Website           *string `json:"website" validate:"omitempty,url,max=500"`
	Phone             *string `json:"phone" validate:"omitempty,phone"`
	Email             *string `json:"email" validate:"omitempty,email,max=254"`
	FoundedYear       *int    `json:"founded_year" validate:"omitempty,min=1800,not_future_year"`
	EmployeeCount     *string `json:"employee_count" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	HeadquartersCity  *string `json:"headquarters_city" validate:"omitempty,max=100"`
	HeadquartersState *string `json:"headquarters_state" validate:"omitempty,max=100"`
}

func (in *CreateAgencyInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = Trim(in.Description)
	in.Website = Trim(in.Website)
	in.Phone = Trim(in.Phone)
	in.Email = Trim(in.Email)
	in.EmployeeCount = Trim(in.EmployeeCount)
	in.HeadquartersCity = Trim(in.HeadquartersCity)
	in.HeadquartersState = Trim(in.HeadquartersState)
}

type UpdateAgencyProfileInput struct {
	Description       *string `json:"description" validate:"omitempty,max=2000"`
	Website           *string `json:"website" validate:"omitempty,url,max=500"`
	Phone             *string `json:"phone" validate:"omitempty,phone"`
	Email             *string `json:"email" validate:"omitempty,email,max=254"`
	FoundedYear       *int    `json:"founded_year" validate:"omitempty,min=1800,not_future_year"`
	EmployeeCount     *string `json:"employee_count" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	HeadquartersCity  *string `json:"headquarters_city" validate:"omitempty,max=100"`
	HeadquartersState *string `json:"headquarters_state" validate:"omitempty,max=100"`
	LogoURL           *string `json:"logo_url" validate:"omitempty,url,max=1000"`
}

func (in *UpdateAgencyProfileInput) Normalize() {
	in.Description = Trim(in.Description)
	in.Website = Trim(in.Website)
	in.Phone = Trim(in.Phone)
	in.Email = Trim(in.Email)
	in.EmployeeCount = Trim(in.EmployeeCount)
	in.HeadquartersCity = Trim(in.HeadquartersCity)
	in.HeadquartersState = Trim(in.HeadquartersState)
	in.LogoURL = Trim(in.LogoURL)
}

type AgencyStatusInput struct {
	Active *bool `json:"active" validate:"required"`
}

type ClaimRequestInput struct {
	AgencyID           string  `json:"agency_id" validate:"required,uuid"`
	BusinessEmail      string  `json:"business_email" validate:"required,email,max=254"`
	PhoneNumber        string  `json:"phone_number" validate:"required,phone"`
	PositionTitle      string  `json:"position_title" validate:"required,min=2,max=100"`
	VerificationMethod string  `json:"verification_method" validate:"required,oneof=email phone manual"`
	AdditionalNotes    *string `json:"additional_notes" validate:"omitempty,max=1000"`
}

func (in *ClaimRequestInput) Normalize() {
	in.AgencyID = strings.TrimSpace(in.AgencyID)
	in.BusinessEmail = strings.ToLower(strings.TrimSpace(in.BusinessEmail))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.PositionTitle = strings.TrimSpace(in.PositionTitle)
	in.AdditionalNotes = Trim(in.AdditionalNotes)
}

// MinRejectionReason is the shortest reason accepted when rejecting a claim.
const MinRejectionReason = 20

type ClaimRejectInput struct {
	Reason string `json:"reason" validate:"required,min=20,max=1000"`
}

func (in *ClaimRejectInput) Normalize() {
	in.Reason = strings.TrimSpace(in.Reason)
}

type ComplianceItemInput struct {
	Type           string  `json:"type" validate:"required,compliance_type"`
	IsActive       *bool   `json:"isActive" validate:"required"`
	ExpirationDate *string `json:"expirationDate" validate:"omitempty,ymd"`
	IsVerified     *bool   `json:"isVerified"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	DocumentURL    *string `json:"documentUrl" validate:"omitempty,max=1000"`
}

type ComplianceUpdateInput struct {
	Items []ComplianceItemInput `json:"items" validate:"required,min=1,max=8,dive"`
}

type ComplianceVerifyInput struct {
	ComplianceType string  `json:"complianceType" validate:"required,compliance_type"`
	Action         string  `json:"action" validate:"required,oneof=verify reject"`
	Reason         *string `json:"reason" validate:"omitempty,max=1000"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

func (in *ComplianceVerifyInput) Normalize() {
	in.Reason = Trim(in.Reason)
	in.Notes = Trim(in.Notes)
}

type LaborRequestInput struct {
	CompanyName     string       `json:"company_name" validate:"required,min=2,max=200"`
	ContactName     string       `json:"contact_name" validate:"required,min=2,max=100"`
	ContactEmail    string       `json:"contact_email" validate:"required,email,max=254"`
	ContactPhone    string       `json:"contact_phone" validate:"required,phone"`
	ProjectName     string       `json:"project_name" validate:"required,min=2,max=200"`
	ProjectLocation string       `json:"project_location" validate:"required,min=2,max=200"`
	StartDate       string       `json:"start_date" validate:"required,ymd"`
	DurationWeeks   *int         `json:"duration_weeks" validate:"omitempty,min=1,max=260"`
	Notes           *string      `json:"notes" validate:"omitempty,max=2000"`
	Crafts          []CraftInput `json:"crafts" validate:"required,min=1,max=10,dive"`
}

func (in *LaborRequestInput) Normalize() {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.ToLower(strings.TrimSpace(in.ContactEmail))
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.ProjectName = strings.TrimSpace(in.ProjectName)
	in.ProjectLocation = strings.TrimSpace(in.ProjectLocation)
	in.Notes = Trim(in.Notes)
	for i := range in.Crafts {
		in.Crafts[i].Trade = strings.TrimSpace(in.Crafts[i].Trade)
		in.Crafts[i].Region = strings.TrimSpace(in.Crafts[i].Region)
	}
}

type CraftInput struct {
	Trade           string           `json:"trade" validate:"required,min=2,max=100"`
	Region          string           `json:"region" validate:"required,min=2,max=100"`
	ExperienceLevel string           `json:"experience_level" validate:"required,oneof=apprentice journeyman foreman superintendent"`
	WorkerCount     int              `json:"worker_count" validate:"required,min=1,max=500"`
	Schedule        string           `json:"schedule" validate:"required,oneof=day night weekend rotating flexible"`
	PayRateMin      *decimal.Decimal `json:"pay_rate_min" validate:"omitempty,gte=0"`
	PayRateMax      *decimal.Decimal `json:"pay_rate_max" validate:"omitempty,gte=0"`
}

func craftPayBand(sl validator.StructLevel) {
	c := sl.Current().Interface().(CraftInput)
	if c.PayRateMin != nil && c.PayRateMax != nil && c.PayRateMax.LessThan(*c.PayRateMin) {
		sl.ReportError(c.PayRateMax, "pay_rate_max", "PayRateMax", "pay_band", "")
	}
}

type UserCleanupInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (in *UserCleanupInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}
