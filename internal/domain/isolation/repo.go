package isolation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository reads the chart data the rule engine scans and persists
// isolation state onto patients. Missing entities surface as
// apperror.NotFound.
type Repository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*PatientIsolation, error)
	RecentDiagnoses(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Diagnosis, error)
	PositiveLabResults(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*LabResult, error)
	// SetPatientIsolation persists the derived requirement. The start date
	// is only written when none is set, so repeat checks are idempotent.
	SetPatientIsolation(ctx context.Context, patientID uuid.UUID, isolationType string, startDate time.Time) error
	ClearPatientIsolation(ctx context.Context, patientID uuid.UUID, endDate time.Time) error
	GetBed(ctx context.Context, id uuid.UUID) (*BedIsolationInfo, error)
	RoomAvailability(ctx context.Context) ([]*RoomAvailability, error)
}
