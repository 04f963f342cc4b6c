package models

import (
	"time"

	"github.com/google/uuid"
)

type ComplianceType string

const (
	ComplianceOSHACertified    ComplianceType = "osha_certified"
	ComplianceWorkersComp      ComplianceType = "workers_comp"
	ComplianceGeneralLiability ComplianceType = "general_liability"
	ComplianceEVerify          ComplianceType = "e_verify"
	ComplianceDrugTesting      ComplianceType = "drug_testing"
	ComplianceBackgroundChecks ComplianceType = "background_checks"
	ComplianceBonded           ComplianceType = "bonded"
	ComplianceStateLicensed    ComplianceType = "state_licensed"
)

var ComplianceTypes = []ComplianceType{
	ComplianceOSHACertified,
	ComplianceWorkersComp,
	ComplianceGeneralLiability,
	ComplianceEVerify,
	ComplianceDrugTesting,
	ComplianceBackgroundChecks,
	ComplianceBonded,
	ComplianceStateLicensed,
}

func (t ComplianceType) Valid() bool {
	for _, ct := range ComplianceTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// ComplianceItem is keyed by (AgencyID, Type). VerifiedBy and VerifiedAt are
// always both set or both nil.
type ComplianceItem struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	AgencyID        uuid.UUID      `json:"agency_id" db:"agency_id"`
	Type            ComplianceType `json:"compliance_type" db:"compliance_type"`
	IsActive        bool           `json:"is_active" db:"is_active"`
	IsVerified      bool           `json:"is_verified" db:"is_verified"`
	VerifiedBy      *uuid.UUID     `json:"verified_by" db:"verified_by"`
	VerifiedAt      *time.Time     `json:"verified_at" db:"verified_at"`
	ExpirationDate  *Date          `json:"expiration_date,omitempty" db:"expiration_date"`
	DocumentURL     *string        `json:"document_url,omitempty" db:"document_url"`
	Notes           *string        `json:"notes,omitempty" db:"notes"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

func (c *ComplianceItem) HasDocument() bool {
	return c.DocumentURL != nil && *c.DocumentURL != ""
}

// MarkVerified stamps the verifier pair together.
func (c *ComplianceItem) MarkVerified(by uuid.UUID, at time.Time) {
	c.IsVerified = true
	c.VerifiedBy = &by
	c.VerifiedAt = &at
	c.RejectionReason = nil
}

// ClearVerification clears the verifier pair together.
func (c *ComplianceItem) ClearVerification() {
	c.IsVerified = false
	c.VerifiedBy = nil
	c.VerifiedAt = nil
}

type ComplianceStatus string

const (
	ComplianceStatusExpired             ComplianceStatus = "expired"
	ComplianceStatusExpiringSoon        ComplianceStatus = "expiring_soon"
	ComplianceStatusPendingVerification ComplianceStatus = "pending_verification"
	ComplianceStatusOK                  ComplianceStatus = "ok"
)
