package transfer

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

const edPatientQuery = `
	SELECT a.id, a.patient_id, a.acuity, u.name, a.awaiting_transfer_since,
	       p.isolation_required
	FROM admissions a
	JOIN patients p ON p.id = a.patient_id
	JOIN units u ON u.id = a.target_unit_id
	WHERE a.status = 'awaiting_transfer'`

func scanEDPatient(row pgx.Row) (*EDPatient, error) {
	var p EDPatient
	err := row.Scan(&p.AdmissionID, &p.PatientID, &p.Acuity, &p.TargetUnit,
		&p.AwaitingSince, &p.IsolationRequired)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) AwaitingTransfer(ctx context.Context, unit *string) ([]*EDPatient, error) {
	query := edPatientQuery
	args := []interface{}{}
	if unit != nil {
		query += ` AND u.name = $1`
		args = append(args, *unit)
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EDPatient
	for rows.Next() {
		p, err := scanEDPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repoPG) GetAdmission(ctx context.Context, admissionID uuid.UUID) (*EDPatient, error) {
	p, err := scanEDPatient(r.conn(ctx).QueryRow(ctx, `
		SELECT a.id, a.patient_id, a.acuity, u.name, a.awaiting_transfer_since,
		       pt.isolation_required
		FROM admissions a
		JOIN patients pt ON pt.id = a.patient_id
		JOIN units u ON u.id = a.target_unit_id
		WHERE a.id = $1`, admissionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("admission", admissionID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) UpsertPriority(ctx context.Context, p *Priority) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transfer_priorities
			(id, admission_id, patient_id, acuity, target_unit, wait_hours,
			 isolation_required, score, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (admission_id) DO UPDATE SET
			acuity = EXCLUDED.acuity,
			target_unit = EXCLUDED.target_unit,
			wait_hours = EXCLUDED.wait_hours,
			isolation_required = EXCLUDED.isolation_required,
			score = EXCLUDED.score,
			computed_at = EXCLUDED.computed_at`,
		p.ID, p.AdmissionID, p.PatientID, p.Acuity, p.TargetUnit,
		p.WaitHours, p.IsolationRequired, p.Score, p.ComputedAt)
	return err
}

func (r *repoPG) AvailableBedCount(ctx context.Context, unit string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*)
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE u.name = $1 AND b.status = 'available'`, unit).Scan(&n)
	return n, err
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

func (r *repoPG) GetUnit(ctx context.Context, name string) (*Unit, error) {
	var u Unit
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name FROM units WHERE name = $1`, name).Scan(&u.ID, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("unit", name)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) UnitStaff(ctx context.Context, unitID uuid.UUID) ([]*StaffMember, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, role
		FROM staff
		WHERE unit_id = $1 AND active`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StaffMember
	for rows.Next() {
		var s StaffMember
		if err := rows.Scan(&s.ID, &s.Name, &s.Role); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *repoPG) SetAdmissionStatus(ctx context.Context, admissionID uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET status = $2, updated_at = now() WHERE id = $1`,
		admissionID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("admission", admissionID)
	}
	return nil
}

func (r *repoPG) Metrics(ctx context.Context, since time.Time) (*Metrics, error) {
	m := &Metrics{WindowStart: since}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (a.transferred_at - a.awaiting_transfer_since)) / 3600), 0),
		       COALESCE(AVG(CASE WHEN EXTRACT(EPOCH FROM (a.transferred_at - a.awaiting_transfer_since)) / 3600
		                         <= CASE a.acuity WHEN 1 THEN 1 WHEN 2 THEN 2 WHEN 3 THEN 4 WHEN 4 THEN 6 ELSE 8 END
		                    THEN 1.0 ELSE 0.0 END), 0),
		       COALESCE(AVG(tp.score), 0),
		       count(*) FILTER (WHERE tp.score >= 80)
		FROM admissions a
		LEFT JOIN transfer_priorities tp ON tp.admission_id = a.id
		WHERE a.transferred_at >= $1`, since).
		Scan(&m.Transfers, &m.AverageBoardingHours, &m.WithinSLARate, &m.AveragePriority, &m.UrgentCount)
	if err != nil {
		return nil, err
	}
	return m, nil
}
