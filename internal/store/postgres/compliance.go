package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nikhilbhutani/agencyhub/internal/models"
)

const complianceColumns = `id, agency_id, compliance_type, is_active, is_verified, verified_by, verified_at,
	expiration_date, document_url, notes, rejection_reason, created_at, updated_at`

func scanCompliance(row pgx.Row) (*models.ComplianceItem, error) {
	var c models.ComplianceItem
	err := row.Scan(
		&c.ID, &c.AgencyID, &c.Type, &c.IsActive, &c.IsVerified, &c.VerifiedBy, &c.VerifiedAt,
		&c.ExpirationDate, &c.DocumentURL, &c.Notes, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCompliance(ctx context.Context, agencyID uuid.UUID) ([]models.ComplianceItem, error) {
	rows, err := s.db.Query(ctx, `SELECT `+complianceColumns+` FROM agency_compliance WHERE agency_id = $1`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("query compliance: %w", err)
	}
	defer rows.Close()

	var out []models.ComplianceItem
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpsertCompliance writes the batch as one multi-row INSERT ... ON CONFLICT,
// so either every item lands or none does.
func (s *Store) UpsertCompliance(ctx context.Context, items []models.ComplianceItem) ([]models.ComplianceItem, error) {
	if len(items) == 0 {
		return []models.ComplianceItem{}, nil
	}

	const perRow = 13
	values := make([]string, len(items))
	args := make([]interface{}, 0, len(items)*perRow)
	for i, it := range items {
		ph := make([]string, perRow)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		values[i] = "(" + strings.Join(ph, ", ") + ")"
		args = append(args,
			it.ID, it.AgencyID, it.Type, it.IsActive, it.IsVerified, it.VerifiedBy, it.VerifiedAt,
			it.ExpirationDate, it.DocumentURL, it.Notes, it.RejectionReason, it.CreatedAt, it.UpdatedAt,
		)
	}

	rows, err := s.db.Query(ctx,
		`INSERT INTO agency_compliance (`+complianceColumns+`)
		 VALUES `+strings.Join(values, ", ")+`
		 ON CONFLICT (agency_id, compliance_type) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			is_verified = EXCLUDED.is_verified,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at,
			expiration_date = EXCLUDED.expiration_date,
			document_url = EXCLUDED.document_url,
			notes = EXCLUDED.notes,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = EXCLUDED.updated_at
		 RETURNING `+complianceColumns,
		args...,
	)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]models.ComplianceItem, 0, len(items))
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}
