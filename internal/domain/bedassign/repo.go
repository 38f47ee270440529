package bedassign

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// AvailableBeds lists beds with status=available, optionally narrowed
	// to one unit, joined with unit staffing.
	AvailableBeds(ctx context.Context, unit *string) ([]*Bed, error)
	GetBed(ctx context.Context, id uuid.UUID) (*Bed, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*PatientPlacement, error)
	InsertAssignment(ctx context.Context, a *Assignment) error
	// OccupyBed flips the bed to occupied only while it is still
	// available, returning the number of rows updated.
	OccupyBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int64, error)
	LinkPatientBed(ctx context.Context, patientID, bedID uuid.UUID) error
}
