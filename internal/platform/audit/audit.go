// Package audit persists append-only audit rows for clinically relevant
// state changes (isolation cleared, bed status transitions, assignments).
// Entries are written through the caller's connection or transaction from
// the request context, so an audit write failure fails the whole mutation.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carestack/bedrock/internal/platform/db"
)

// Entry is one audit row.
type Entry struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	EntityType  string                 `db:"entity_type" json:"entity_type"`
	EntityID    string                 `db:"entity_id" json:"entity_id"`
	Action      string                 `db:"action" json:"action"`
	Detail      map[string]interface{} `db:"detail" json:"detail,omitempty"`
	Reason      *string                `db:"reason" json:"reason,omitempty"`
	PerformedBy string                 `db:"performed_by" json:"performed_by"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
}

// Recorder writes and reads audit rows.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type recorderPG struct {
	pool *pgxpool.Pool
}

func NewRecorder(pool *pgxpool.Pool) Recorder {
	return &recorderPG{pool: pool}
}

func (r *recorderPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *recorderPG) Record(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var detail []byte
	if e.Detail != nil {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			return err
		}
	}

	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, entity_type, entity_id, action, detail, reason, performed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.EntityType, e.EntityID, e.Action, detail, e.Reason, e.PerformedBy, e.CreatedAt,
	)
	return err
}

func (r *recorderPG) List(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, detail, reason, performed_by, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var detail []byte
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &detail, &e.Reason, &e.PerformedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, err
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
