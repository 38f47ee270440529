package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// AwaitingTransfer lists ED admissions with status awaiting_transfer,
	// optionally narrowed to one target unit.
	AwaitingTransfer(ctx context.Context, unit *string) ([]*EDPatient, error)
	GetAdmission(ctx context.Context, admissionID uuid.UUID) (*EDPatient, error)
	UpsertPriority(ctx context.Context, p *Priority) error
	AvailableBedCount(ctx context.Context, unit string) (int, error)
	// DischargeTimes lists predicted discharge dates for the unit from
	// readiness records at or above minScore.
	DischargeTimes(ctx context.Context, unit string, minScore float64) ([]time.Time, error)
	GetUnit(ctx context.Context, name string) (*Unit, error)
	UnitStaff(ctx context.Context, unitID uuid.UUID) ([]*StaffMember, error)
	SetAdmissionStatus(ctx context.Context, admissionID uuid.UUID, status string) error
	Metrics(ctx context.Context, since time.Time) (*Metrics, error)
}
