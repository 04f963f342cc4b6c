package models

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimStatusPending     ClaimStatus = "pending"
	ClaimStatusUnderReview ClaimStatus = "under_review"
	ClaimStatusApproved    ClaimStatus = "approved"
	ClaimStatusRejected    ClaimStatus = "rejected"
)

// Terminal statuses never change again.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusUnderReview, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a claim may move from s to next.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	switch s {
	case ClaimStatusPending:
		return next == ClaimStatusUnderReview || next == ClaimStatusApproved || next == ClaimStatusRejected
	case ClaimStatusUnderReview:
		return next == ClaimStatusApproved || next == ClaimStatusRejected
	}
	return false
}

const (
	VerificationEmail  = "email"
	VerificationPhone  = "phone"
	VerificationManual = "manual"
)

type ClaimRequest struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	AgencyID           uuid.UUID   `json:"agency_id" db:"agency_id"`
	UserID             uuid.UUID   `json:"user_id" db:"user_id"`
	BusinessEmail      string      `json:"business_email" db:"business_email"`
	PhoneNumber        string      `json:"phone_number" db:"phone_number"`
	PositionTitle      string      `json:"position_title" db:"position_title"`
	VerificationMethod string      `json:"verification_method" db:"verification_method"`
	AdditionalNotes    *string     `json:"additional_notes,omitempty" db:"additional_notes"`
	EmailDomainMatch   bool        `json:"email_domain_match" db:"email_domain_match"`
	Status             ClaimStatus `json:"status" db:"status"`
	RejectionReason    *string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy         *uuid.UUID  `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt         *time.Time  `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`

	AgencyName string `json:"agency_name,omitempty" db:"-"`
}
