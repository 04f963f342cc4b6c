package postgres

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/agencyhub/internal/audit"
	"github.com/nikhilbhutani/agencyhub/internal/models"
)

func (s *Store) InsertAuditLog(ctx context.Context, l *models.AuditLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::inet, $8)`,
		l.ID, l.ActorID, l.Action, l.ResourceType, l.ResourceID, l.Details, l.IPAddress, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, q audit.Query) ([]models.AuditLog, int, error) {
	w := &where{}
	if q.Action != "" {
		w.add("action = $%d", q.Action)
	}
	if q.ActorID != nil {
		w.add("actor_id = $%d", *q.ActorID)
	}
	if q.StartDate != nil {
		w.add("created_at >= $%d", *q.StartDate)
	}
	if q.EndDate != nil {
		w.add("created_at <= $%d", *q.EndDate)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	limit, args := w.page(q.Limit, q.Offset)
	rows, err := s.db.Query(ctx,
		`SELECT id, actor_id, action, resource_type, resource_id, details, host(ip_address), created_at
		 FROM audit_logs`+w.String()+` ORDER BY created_at DESC, id`+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.ResourceType, &l.ResourceID, &l.Details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
