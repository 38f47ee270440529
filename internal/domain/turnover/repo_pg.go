package turnover

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bedStateCols = `
	b.id, u.name, b.room_number, b.status, b.cleaning_status,
	b.cleaning_priority, b.isolation_capable, b.has_telemetry,
	b.occupied_at, b.available_at, b.cleaning_started_at, b.last_cleaned_at`

func scanBedState(row pgx.Row) (*BedState, error) {
	var b BedState
	err := row.Scan(&b.ID, &b.Unit, &b.RoomNumber, &b.Status, &b.CleaningStatus,
		&b.CleaningPriority, &b.IsolationCapable, &b.HasTelemetry,
		&b.OccupiedAt, &b.AvailableAt, &b.CleaningStartedAt, &b.LastCleanedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) GetBedState(ctx context.Context, bedID uuid.UUID) (*BedState, error) {
	b, err := scanBedState(r.conn(ctx).QueryRow(ctx, `
		SELECT`+bedStateCols+`
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE b.id = $1`, bedID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("bed", bedID)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repoPG) UpdateState(ctx context.Context, bed *BedState) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET
			status = $2,
			cleaning_status = $3,
			cleaning_priority = $4,
			occupied_at = $5,
			available_at = $6,
			cleaning_started_at = $7,
			last_cleaned_at = $8,
			updated_at = now()
		WHERE id = $1`,
		bed.ID, bed.Status, bed.CleaningStatus, bed.CleaningPriority,
		bed.OccupiedAt, bed.AvailableAt, bed.CleaningStartedAt, bed.LastCleanedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("bed", bed.ID)
	}
	return nil
}

func (r *repoPG) InsertStatusLog(ctx context.Context, change *StatusChange) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed_status_log (id, bed_id, old_status, new_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		change.ID, change.BedID, change.OldStatus, change.NewStatus,
		change.ChangedBy, change.ChangedAt)
	return err
}

func (r *repoPG) InsertTurnover(ctx context.Context, record *TurnoverRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO turnover_metrics
			(id, bed_id, unit, duration_minutes, target_minutes, exceeded_target, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.BedID, record.Unit, record.DurationMinutes,
		record.TargetMinutes, record.ExceededTarget, record.CompletedAt)
	return err
}

func (r *repoPG) CleaningQueue(ctx context.Context) ([]*BedState, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT`+bedStateCols+`
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE b.status = 'cleaning'
		  AND b.cleaning_status IN ('dirty', 'in_progress')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*BedState
	for rows.Next() {
		b, err := scanBedState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repoPG) Turnovers(ctx context.Context, since time.Time) ([]*TurnoverRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bed_id, unit, duration_minutes, target_minutes, exceeded_target, completed_at
		FROM turnover_metrics
		WHERE completed_at >= $1
		ORDER BY completed_at`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TurnoverRecord
	for rows.Next() {
		var t TurnoverRecord
		if err := rows.Scan(&t.ID, &t.BedID, &t.Unit, &t.DurationMinutes,
			&t.TargetMinutes, &t.ExceededTarget, &t.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
