package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LaborRequest struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	SubmittedBy     *uuid.UUID         `json:"submitted_by,omitempty" db:"submitted_by"`
	CompanyName     string             `json:"company_name" db:"company_name"`
	ContactName     string             `json:"contact_name" db:"contact_name"`
	ContactEmail    string             `json:"contact_email" db:"contact_email"`
	ContactPhone    string             `json:"contact_phone" db:"contact_phone"`
	ProjectName     string             `json:"project_name" db:"project_name"`
	ProjectLocation string             `json:"project_location" db:"project_location"`
	StartDate       Date               `json:"start_date" db:"start_date"`
	DurationWeeks   *int               `json:"duration_weeks,omitempty" db:"duration_weeks"`
	Notes           *string            `json:"notes,omitempty" db:"notes"`
	Status          string             `json:"status" db:"status"`
	Crafts          []CraftRequirement `json:"crafts" db:"-"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}

type CraftRequirement struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	LaborRequestID  uuid.UUID        `json:"labor_request_id" db:"labor_request_id"`
	Position        int              `json:"position" db:"position"`
	Trade           string           `json:"trade" db:"trade"`
	Region          string           `json:"region" db:"region"`
	ExperienceLevel string           `json:"experience_level" db:"experience_level"`
	WorkerCount     int              `json:"worker_count" db:"worker_count"`
	Schedule        string           `json:"schedule" db:"schedule"`
	PayRateMin      *decimal.Decimal `json:"pay_rate_min,omitempty" db:"pay_rate_min"`
	PayRateMax      *decimal.Decimal `json:"pay_rate_max,omitempty" db:"pay_rate_max"`
}

const LaborRequestStatusNew = "new"
