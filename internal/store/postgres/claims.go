package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nikhilbhutani/agencyhub/internal/claim"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

const claimColumns = `c.id, c.agency_id, c.user_id, c.business_email, c.phone_number, c.position_title,
	c.verification_method, c.additional_notes, c.email_domain_match, c.status, c.rejection_reason,
	c.reviewed_by, c.reviewed_at, c.created_at, c.updated_at, a.name`

const claimFrom = ` FROM agency_claim_requests c JOIN agencies a ON a.id = c.agency_id`

func scanClaim(row pgx.Row) (*models.ClaimRequest, error) {
	var c models.ClaimRequest
	err := row.Scan(
		&c.ID, &c.AgencyID, &c.UserID, &c.BusinessEmail, &c.PhoneNumber, &c.PositionTitle,
		&c.VerificationMethod, &c.AdditionalNotes, &c.EmailDomainMatch, &c.Status, &c.RejectionReason,
		&c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt, &c.AgencyName,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) HasOpenClaim(ctx context.Context, agencyID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM agency_claim_requests
		  WHERE agency_id = $1 AND user_id = $2 AND status IN ('pending', 'under_review'))`,
		agencyID, userID,
	).Scan(&exists)
	return exists, err
}

func (s *Store) InsertClaim(ctx context.Context, c *models.ClaimRequest) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agency_claim_requests (id, agency_id, user_id, business_email, phone_number,
			position_title, verification_method, additional_notes, email_domain_match, status,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.AgencyID, c.UserID, c.BusinessEmail, c.PhoneNumber,
		c.PositionTitle, c.VerificationMethod, c.AdditionalNotes, c.EmailDomainMatch, c.Status,
		c.CreatedAt, c.UpdatedAt,
	)
	return translate(err)
}

func (s *Store) GetClaim(ctx context.Context, id uuid.UUID) (*models.ClaimRequest, error) {
	c, err := scanClaim(s.db.QueryRow(ctx, `SELECT `+claimColumns+claimFrom+` WHERE c.id = $1`, id))
	return c, translate(err)
}

func (s *Store) ListClaims(ctx context.Context, f claim.Filter) ([]models.ClaimRequest, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("c.status = $%d", f.Status)
	}
	if f.UserID != nil {
		w.add("c.user_id = $%d", *f.UserID)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM agency_claim_requests c`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}

	limit, args := w.page(f.Limit, f.Offset)
	rows, err := s.db.Query(ctx, `SELECT `+claimColumns+claimFrom+w.String()+` ORDER BY c.created_at DESC, c.id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var out []models.ClaimRequest
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func lockClaim(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.ClaimRequest, error) {
	c, err := scanClaim(tx.QueryRow(ctx, `SELECT `+claimColumns+claimFrom+` WHERE c.id = $1 FOR UPDATE OF c`, id))
	return c, translate(err)
}

// ApproveClaim locks the claim and its agency, then marks the agency claimed,
// the claim approved and promotes a plain user to agency owner.
func (s *Store) ApproveClaim(ctx context.Context, id, reviewer uuid.UUID, at time.Time, check func(*models.ClaimRequest, *models.Agency) error) (*models.ClaimRequest, error) {
	var out *models.ClaimRequest
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		c, err := lockClaim(ctx, tx, id)
		if err != nil {
			return err
		}
		a, err := scanAgency(tx.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE id = $1 FOR UPDATE`, c.AgencyID))
		if err != nil {
			return translate(err)
		}
		if err := check(c, a); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE agencies SET is_claimed = true, claimed_by = $2, claimed_at = $3, updated_at = $3 WHERE id = $1`,
			a.ID, c.UserID, at,
		); err != nil {
			return fmt.Errorf("claim agency: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE agency_claim_requests SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4 WHERE id = $1`,
			c.ID, models.ClaimStatusApproved, reviewer, at,
		); err != nil {
			return fmt.Errorf("approve claim: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET role = $2 WHERE id = $1 AND role = $3`,
			c.UserID, models.RoleAgencyOwner, models.RoleUser,
		); err != nil {
			return fmt.Errorf("promote claimant: %w", err)
		}

		c.Status = models.ClaimStatusApproved
		c.ReviewedBy = &reviewer
		c.ReviewedAt = &at
		c.UpdatedAt = at
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) TransitionClaim(ctx context.Context, id uuid.UUID, next models.ClaimStatus, reviewer uuid.UUID, at time.Time, reason *string, check func(*models.ClaimRequest) error) (*models.ClaimRequest, error) {
	var out *models.ClaimRequest
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		c, err := lockClaim(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(c); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE agency_claim_requests
			 SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4,
			     rejection_reason = COALESCE($5, rejection_reason)
			 WHERE id = $1`,
			c.ID, next, reviewer, at, reason,
		); err != nil {
			return fmt.Errorf("update claim: %w", err)
		}

		c.Status = next
		c.ReviewedBy = &reviewer
		c.ReviewedAt = &at
		c.UpdatedAt = at
		if reason != nil {
			c.RejectionReason = reason
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
