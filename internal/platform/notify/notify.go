// Package notify is the notification outbox: engines insert rows for unit
// staff inside their own transactions and a delivery worker (out of scope
// here) drains them.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carestack/bedrock/internal/platform/db"
)

// Priority of an outbound notification.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification is one outbox row.
type Notification struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Type        string     `db:"type" json:"type"`
	Priority    string     `db:"priority" json:"priority"`
	Subject     string     `db:"subject" json:"subject"`
	Body        string     `db:"body" json:"body"`
	AdmissionID *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	UnitID      *uuid.UUID `db:"unit_id" json:"unit_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}

// Outbox persists notifications.
type Outbox interface {
	Create(ctx context.Context, n *Notification) error
	CountSince(ctx context.Context, admissionID, unitID uuid.UUID, since time.Time) (int, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type outboxPG struct {
	pool *pgxpool.Pool
}

func NewOutbox(pool *pgxpool.Pool) Outbox {
	return &outboxPG{pool: pool}
}

func (o *outboxPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return o.pool
}

func (o *outboxPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	if n.Status == "" {
		n.Status = StatusPending
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	_, err := o.conn(ctx).Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, type, priority, subject, body, admission_id, unit_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.RecipientID, n.Type, n.Priority, n.Subject, n.Body, n.AdmissionID, n.UnitID, n.Status,
	)
	return err
}

func (o *outboxPG) CountSince(ctx context.Context, admissionID, unitID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := o.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE admission_id = $1 AND unit_id = $2 AND created_at >= $3`,
		admissionID, unitID, since,
	).Scan(&count)
	return count, err
}

func (o *outboxPG) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := o.conn(ctx).Query(ctx, `
		SELECT id, recipient_id, type, priority, subject, body, admission_id, unit_id, status, created_at, sent_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Priority, &n.Subject, &n.Body,
			&n.AdmissionID, &n.UnitID, &n.Status, &n.CreatedAt, &n.SentAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
