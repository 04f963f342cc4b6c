package models

import (
	"time"

	"github.com/google/uuid"
)

type Agency struct {
	ID                          uuid.UUID  `json:"id" db:"id"`
	Name                        string     `json:"name" db:"name"`
	Slug                        string     `json:"slug" db:"slug"`
	Description                 *string    `json:"description,omitempty" db:"description"`
	Website                     *string    `json:"website,omitempty" db:"website"`
	Phone                       *string    `json:"phone,omitempty" db:"phone"`
	Email                       *string    `json:"email,omitempty" db:"email"`
	FoundedYear                 *int       `json:"founded_year,omitempty" db:"founded_year"`
	EmployeeCount               *string    `json:"employee_count,omitempty" db:"employee_count"`
	HeadquartersCity            *string    `json:"headquarters_city,omitempty" db:"headquarters_city"`
	HeadquartersState           *string    `json:"headquarters_state,omitempty" db:"headquarters_state"`
	LogoURL                     *string    `json:"logo_url,omitempty" db:"logo_url"`
	IsActive                    bool       `json:"is_active" db:"is_active"`
	IsClaimed                   bool       `json:"is_claimed" db:"is_claimed"`
	ClaimedBy                   *uuid.UUID `json:"claimed_by,omitempty" db:"claimed_by"`
	ClaimedAt                   *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`
	ProfileCompletionPercentage int        `json:"profile_completion_percentage" db:"profile_completion_percentage"`
	CreatedBy                   *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	LastEditedBy                *uuid.UUID `json:"last_edited_by,omitempty" db:"last_edited_by"`
	LastEditedAt                *time.Time `json:"last_edited_at,omitempty" db:"last_edited_at"`
	CreatedAt                   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time  `json:"updated_at" db:"updated_at"`

	// Owner is filled in for admin listings of claimed agencies.
	Owner *ProfileSummary `json:"owner,omitempty" db:"-"`
}

// ProfileFields are the optional listing fields an owner fills in. They drive
// profile_completion_percentage.
type ProfileFields struct {
	Description       *string `json:"description,omitempty"`
	Website           *string `json:"website,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	FoundedYear       *int    `json:"founded_year,omitempty"`
	EmployeeCount     *string `json:"employee_count,omitempty"`
	HeadquartersCity  *string `json:"headquarters_city,omitempty"`
	HeadquartersState *string `json:"headquarters_state,omitempty"`
	LogoURL           *string `json:"logo_url,omitempty"`
}

func (a *Agency) Fields() ProfileFields {
	return ProfileFields{
		Description:       a.Description,
		Website:           a.Website,
		Phone:             a.Phone,
		Email:             a.Email,
		FoundedYear:       a.FoundedYear,
		EmployeeCount:     a.EmployeeCount,
		HeadquartersCity:  a.HeadquartersCity,
		HeadquartersState: a.HeadquartersState,
		LogoURL:           a.LogoURL,
	}
}

func (a *Agency) ApplyFields(f ProfileFields) {
	a.Description = f.Description
	a.Website = f.Website
	a.Phone = f.Phone
	a.Email = f.Email
	a.FoundedYear = f.FoundedYear
	a.EmployeeCount = f.EmployeeCount
	a.HeadquartersCity = f.HeadquartersCity
	a.HeadquartersState = f.HeadquartersState
	a.LogoURL = f.LogoURL
}

// CompletionPercentage is the share of filled profile fields, rounded down.
func (f ProfileFields) CompletionPercentage() int {
	strs := []*string{f.Description, f.Website, f.Phone, f.Email, f.EmployeeCount,
		f.HeadquartersCity, f.HeadquartersState, f.LogoURL}
	total := len(strs) + 1
	filled := 0
	for _, s := range strs {
		if s != nil && *s != "" {
			filled++
		}
	}
	if f.FoundedYear != nil {
		filled++
	}
	return filled * 100 / total
}

var EmployeeCountRanges = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
