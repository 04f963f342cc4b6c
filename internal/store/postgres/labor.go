package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nikhilbhutani/agencyhub/internal/models"
)

func (s *Store) InsertLaborRequest(ctx context.Context, r *models.LaborRequest) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO labor_requests (id, submitted_by, company_name, contact_name, contact_email,
				contact_phone, project_name, project_location, start_date, duration_weeks, notes,
				status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			r.ID, r.SubmittedBy, r.CompanyName, r.ContactName, r.ContactEmail,
			r.ContactPhone, r.ProjectName, r.ProjectLocation, r.StartDate, r.DurationWeeks, r.Notes,
			r.Status, r.CreatedAt,
		)
		if err != nil {
			return translate(err)
		}

		batch := &pgx.Batch{}
		for _, c := range r.Crafts {
			batch.Queue(
				`INSERT INTO labor_request_crafts (id, labor_request_id, position, trade, region,
					experience_level, worker_count, schedule, pay_rate_min, pay_rate_max)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				c.ID, r.ID, c.Position, c.Trade, c.Region,
				c.ExperienceLevel, c.WorkerCount, c.Schedule, c.PayRateMin, c.PayRateMax,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert crafts: %w", translate(err))
		}
		return nil
	})
}

func (s *Store) ListLaborRequests(ctx context.Context, limit, offset int) ([]models.LaborRequest, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM labor_requests`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count labor requests: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, submitted_by, company_name, contact_name, contact_email, contact_phone,
			project_name, project_location, start_date, duration_weeks, notes, status, created_at
		 FROM labor_requests ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query labor requests: %w", err)
	}
	defer rows.Close()

	var out []models.LaborRequest
	index := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for rows.Next() {
		var r models.LaborRequest
		if err := rows.Scan(&r.ID, &r.SubmittedBy, &r.CompanyName, &r.ContactName, &r.ContactEmail, &r.ContactPhone,
			&r.ProjectName, &r.ProjectLocation, &r.StartDate, &r.DurationWeeks, &r.Notes, &r.Status, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan labor request: %w", err)
		}
		r.Crafts = []models.CraftRequirement{}
		index[r.ID] = len(out)
		ids = append(ids, r.ID)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	craftRows, err := s.db.Query(ctx,
		`SELECT id, labor_request_id, position, trade, region, experience_level, worker_count,
			schedule, pay_rate_min::text, pay_rate_max::text
		 FROM labor_request_crafts WHERE labor_request_id = ANY($1)
		 ORDER BY labor_request_id, position`,
		ids,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query crafts: %w", err)
	}
	defer craftRows.Close()

	for craftRows.Next() {
		var c models.CraftRequirement
		if err := craftRows.Scan(&c.ID, &c.LaborRequestID, &c.Position, &c.Trade, &c.Region, &c.ExperienceLevel,
			&c.WorkerCount, &c.Schedule, &c.PayRateMin, &c.PayRateMax); err != nil {
			return nil, 0, fmt.Errorf("scan craft: %w", err)
		}
		i := index[c.LaborRequestID]
		out[i].Crafts = append(out[i].Crafts, c)
	}
	return out, total, craftRows.Err()
}
