package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nikhilbhutani/agencyhub/internal/agency"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

const agencyColumns = `id, name, slug, description, website, phone, email, founded_year,
	employee_count, headquarters_city, headquarters_state, logo_url, is_active, is_claimed,
	claimed_by, claimed_at, profile_completion_percentage, created_by, last_edited_by,
	last_edited_at, created_at, updated_at`

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var a models.Agency
	err := row.Scan(
		&a.ID, &a.Name, &a.Slug, &a.Description, &a.Website, &a.Phone, &a.Email, &a.FoundedYear,
		&a.EmployeeCount, &a.HeadquartersCity, &a.HeadquartersState, &a.LogoURL, &a.IsActive, &a.IsClaimed,
		&a.ClaimedBy, &a.ClaimedAt, &a.ProfileCompletionPercentage, &a.CreatedBy, &a.LastEditedBy,
		&a.LastEditedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func agencyFilter(f agency.Filter) *where {
	w := &where{}
	if f.Search != "" {
		w.add(`name ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(f.Search))
	}
	switch f.Status {
	case agency.StatusActive:
		w.addRaw("is_active")
	case agency.StatusInactive:
		w.addRaw("NOT is_active")
	}
	switch f.Claimed {
	case agency.ClaimedYes:
		w.addRaw("is_claimed")
	case agency.ClaimedNo:
		w.addRaw("NOT is_claimed")
	}
	return w
}

func (s *Store) ListAgencies(ctx context.Context, f agency.Filter) ([]models.Agency, int, error) {
	w := agencyFilter(f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM agencies`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count agencies: %w", err)
	}

	limit, args := w.page(f.Limit, f.Offset)
	rows, err := s.db.Query(ctx,
		`SELECT `+agencyColumns+` FROM agencies`+w.String()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query agencies: %w", err)
	}
	defer rows.Close()

	var out []models.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan agency: %w", err)
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (s *Store) GetAgency(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	a, err := scanAgency(s.db.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE id = $1`, id))
	return a, translate(err)
}

func (s *Store) GetAgencyBySlug(ctx context.Context, slug string) (*models.Agency, error) {
	a, err := scanAgency(s.db.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE slug = $1`, slug))
	return a, translate(err)
}

func (s *Store) AgencyNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agencies WHERE lower(name) = lower($1))`, name).Scan(&exists)
	return exists, err
}

func (s *Store) AgencySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agencies WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (s *Store) InsertAgency(ctx context.Context, a *models.Agency) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agencies (id, name, slug, description, website, phone, email, founded_year,
			employee_count, headquarters_city, headquarters_state, is_active, is_claimed,
			profile_completion_percentage, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID, a.Name, a.Slug, a.Description, a.Website, a.Phone, a.Email, a.FoundedYear,
		a.EmployeeCount, a.HeadquartersCity, a.HeadquartersState, a.IsActive, a.IsClaimed,
		a.ProfileCompletionPercentage, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) SetAgencyStatus(ctx context.Context, id uuid.UUID, active bool, editor uuid.UUID, at time.Time) (*models.Agency, error) {
	a, err := scanAgency(s.db.QueryRow(ctx,
		`UPDATE agencies SET is_active = $2, last_edited_by = $3, last_edited_at = $4, updated_at = $4
		 WHERE id = $1 RETURNING `+agencyColumns,
		id, active, editor, at,
	))
	return a, translate(err)
}

func (s *Store) UpdateAgencyProfile(ctx context.Context, a *models.Agency) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE agencies SET description = $2, website = $3, phone = $4, email = $5, founded_year = $6,
			employee_count = $7, headquarters_city = $8, headquarters_state = $9, logo_url = $10,
			profile_completion_percentage = $11, last_edited_by = $12, last_edited_at = $13, updated_at = $14
		 WHERE id = $1`,
		a.ID, a.Description, a.Website, a.Phone, a.Email, a.FoundedYear,
		a.EmployeeCount, a.HeadquartersCity, a.HeadquartersState, a.LogoURL,
		a.ProfileCompletionPercentage, a.LastEditedBy, a.LastEditedAt, a.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows)
	}
	return nil
}
