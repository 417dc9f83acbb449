package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry records an authorization decision or admin action. Denials are
// appended here so "not your resource" failures stay auditable even though
// the HTTP status looks the same as a role denial.
type AuditEntry struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"` // allowed | denied_role | denied_ownership
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLogsStore struct {
	db *pgxpool.Pool
}

func (s *AuditLogsStore) Append(ctx context.Context, e *AuditEntry) error {
	query := `
		INSERT INTO audit_logs (actor_id, actor_role, resource, action, outcome, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query, e.ActorID, e.ActorRole, e.Resource, e.Action, e.Outcome, e.Detail).
		Scan(&e.ID, &e.CreatedAt)
}

func (s *AuditLogsStore) List(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, actor_id, actor_role, resource, action, outcome, COALESCE(detail, ''), created_at
		FROM audit_logs ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Resource, &e.Action, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
