package bedassign

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

const bedCols = `
	b.id, b.room_number, b.bed_number, u.name, b.status,
	b.isolation_capable, b.isolation_type, b.has_telemetry, b.has_oxygen,
	b.near_nurses_station, b.bariatric, b.cleaning_status,
	COALESCE(u.patients_per_nurse, 0)`

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.RoomNumber, &b.BedNumber, &b.Unit, &b.Status,
		&b.IsolationCapable, &b.IsolationType, &b.HasTelemetry, &b.HasOxygen,
		&b.NearNursesStation, &b.Bariatric, &b.CleaningStatus, &b.UnitStaffRatio)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) AvailableBeds(ctx context.Context, unit *string) ([]*Bed, error) {
	query := `
		SELECT` + bedCols + `
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE b.status = 'available'`
	args := []interface{}{}
	if unit != nil {
		query += ` AND u.name = $1`
		args = append(args, *unit)
	}
	query += ` ORDER BY u.name, b.room_number, b.bed_number`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beds []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}

func (r *repoPG) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	b, err := scanBed(r.conn(ctx).QueryRow(ctx, `
		SELECT`+bedCols+`
		FROM beds b
		JOIN units u ON u.id = b.unit_id
		WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("bed", id)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repoPG) GetPatient(ctx context.Context, id uuid.UUID) (*PatientPlacement, error) {
	var p PatientPlacement
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, isolation_required, isolation_type, current_bed_id
		FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.IsolationRequired, &p.IsolationType, &p.CurrentBedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("patient", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) InsertAssignment(ctx context.Context, a *Assignment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed_assignments
			(id, patient_id, bed_id, assigned_by, reasoning,
			 isolation_required, isolation_type, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PatientID, a.BedID, a.AssignedBy, a.Reasoning,
		a.IsolationRequired, a.IsolationType, a.AssignedAt)
	return err
}

func (r *repoPG) OccupyBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds
		SET status = 'occupied', occupied_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'available'`, bedID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) LinkPatientBed(ctx context.Context, patientID, bedID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET current_bed_id = $2 WHERE id = $1`, patientID, bedID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("patient", patientID)
	}
	return nil
}
