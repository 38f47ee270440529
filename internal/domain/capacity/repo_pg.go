package capacity

import (
	"context"
	"errors"
	"time"

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

func (r *repoPG) UnitOccupancy(ctx context.Context, unit string) (*Occupancy, error) {
	var o Occupancy
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT u.id, u.name,
		       count(b.id),
		       count(b.id) FILTER (WHERE b.status = 'occupied')
		FROM units u
		LEFT JOIN beds b ON b.unit_id = u.id
		WHERE u.name = $1
		GROUP BY u.id, u.name`, unit).
		Scan(&o.UnitID, &o.Unit, &o.Capacity, &o.Occupied)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("unit", unit)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) DischargeTimes(ctx context.Context, unit string, minScore float64) ([]time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT predicted_discharge_date
		FROM discharge_readiness_predictions
		WHERE unit = $1 AND overall_score >= $2
		ORDER BY predicted_discharge_date`, unit, minScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repoPG) AdmissionCount(ctx context.Context, unit string, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*)
		FROM admissions a
		JOIN units u ON u.id = a.unit_id
		WHERE u.name = $1 AND a.admitted_at >= $2`, unit, since).Scan(&n)
	return n, err
}

func (r *repoPG) DailyCensus(ctx context.Context, since time.Time) ([]*DailyCensus, error) {
	// Daily hospital-wide occupancy rate, reconstructed from admission
	// intervals against the bed count.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.day,
		       count(a.id)::float / NULLIF((SELECT count(*) FROM beds), 0)
		FROM generate_series($1::date, current_date, interval '1 day') AS d(day)
		LEFT JOIN admissions a
		       ON a.admitted_at < d.day + interval '1 day'
		      AND (a.discharged_at IS NULL OR a.discharged_at >= d.day)
		GROUP BY d.day
		ORDER BY d.day`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DailyCensus
	for rows.Next() {
		var d DailyCensus
		var rate *float64
		if err := rows.Scan(&d.Date, &rate); err != nil {
			return nil, err
		}
		if rate != nil {
			d.Rate = *rate
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *repoPG) ActivatableBeds(ctx context.Context, unit string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*)
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE u.name = $1
		  AND b.status IN ('maintenance', 'reserved')
		  AND NOT b.isolation_capable`, unit).Scan(&n)
	return n, err
}
