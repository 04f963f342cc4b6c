package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin       = "admin"
	RoleAgencyOwner = "agency_owner"
	RoleUser        = "user"
)

// Profile mirrors the auth user; ID equals the auth user id.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Role      string    `json:"role" db:"role"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name,omitempty" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

func (p *Profile) Summary() *ProfileSummary {
	return &ProfileSummary{ID: p.ID, Email: p.Email, FullName: p.FullName}
}

type ProfileSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name,omitempty"`
}
