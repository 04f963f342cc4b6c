package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/agencyhub/internal/models"
)

const profileColumns = `id, role, email, full_name, created_at`

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Role, &p.Email, &p.FullName, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Role, &p.Email, &p.FullName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteProfilesByEmail(ctx context.Context, email string) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return 0, fmt.Errorf("delete profiles: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteIdentitiesByEmail removes the auth provider's identity rows, which
// otherwise block re-registration with the same address.
func (s *Store) DeleteIdentitiesByEmail(ctx context.Context, email string) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM auth.identities WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return 0, fmt.Errorf("delete identities: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
