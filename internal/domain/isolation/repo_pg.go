package isolation

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

func (r *repoPG) GetPatient(ctx context.Context, id uuid.UUID) (*PatientIsolation, error) {
	var p PatientIsolation
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, isolation_required, isolation_type, isolation_start_date, isolation_end_date, current_bed_id
		FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.IsolationRequired, &p.IsolationType, &p.IsolationStartDate, &p.IsolationEndDate, &p.CurrentBedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("patient", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) RecentDiagnoses(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Diagnosis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, code, description, diagnosed_at
		FROM diagnoses
		WHERE patient_id = $1 AND diagnosed_at >= $2
		ORDER BY diagnosed_at DESC`, patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.ID, &d.PatientID, &d.Code, &d.Description, &d.DiagnosedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *repoPG) PositiveLabResults(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*LabResult, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, test_name, result, is_positive, resulted_at
		FROM lab_results
		WHERE patient_id = $1 AND is_positive AND resulted_at >= $2
		ORDER BY resulted_at DESC`, patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LabResult
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(&l.ID, &l.PatientID, &l.TestName, &l.Result, &l.IsPositive, &l.ResultedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *repoPG) SetPatientIsolation(ctx context.Context, patientID uuid.UUID, isolationType string, startDate time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			isolation_required = TRUE,
			isolation_type = $2,
			isolation_start_date = COALESCE(isolation_start_date, $3),
			isolation_end_date = NULL,
			updated_at = NOW()
		WHERE id = $1`, patientID, isolationType, startDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("patient", patientID)
	}
	return nil
}

func (r *repoPG) ClearPatientIsolation(ctx context.Context, patientID uuid.UUID, endDate time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			isolation_required = FALSE,
			isolation_type = NULL,
			isolation_end_date = $2,
			updated_at = NOW()
		WHERE id = $1`, patientID, endDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("patient", patientID)
	}
	return nil
}

func (r *repoPG) GetBed(ctx context.Context, id uuid.UUID) (*BedIsolationInfo, error) {
	var b BedIsolationInfo
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT b.id, u.name, b.status, b.isolation_capable, b.isolation_type
		FROM beds b JOIN units u ON u.id = b.unit_id
		WHERE b.id = $1`, id).
		Scan(&b.ID, &b.Unit, &b.Status, &b.IsolationCapable, &b.IsolationType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("bed", id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) RoomAvailability(ctx context.Context) ([]*RoomAvailability, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT u.name, b.isolation_type,
			COUNT(*) FILTER (WHERE b.status = 'available') AS available,
			COUNT(*) FILTER (WHERE b.status = 'occupied') AS occupied,
			COUNT(*) AS total
		FROM beds b JOIN units u ON u.id = b.unit_id
		WHERE b.isolation_capable AND b.isolation_type IS NOT NULL
		GROUP BY u.name, b.isolation_type
		ORDER BY u.name, b.isolation_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RoomAvailability
	for rows.Next() {
		var ra RoomAvailability
		if err := rows.Scan(&ra.Unit, &ra.IsolationType, &ra.Available, &ra.Occupied, &ra.Total); err != nil {
			return nil, err
		}
		if ra.Total > 0 {
			ra.UtilizationPct = float64(ra.Occupied) / float64(ra.Total) * 100
		}
		out = append(out, &ra)
	}
	return out, rows.Err()
}
