package turnover

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetBedState(ctx context.Context, bedID uuid.UUID) (*BedState, error)
	UpdateState(ctx context.Context, bed *BedState) error
	InsertStatusLog(ctx context.Context, change *StatusChange) error
	InsertTurnover(ctx context.Context, record *TurnoverRecord) error
	// CleaningQueue lists beds in cleaning whose cleaning status is
	// dirty or in progress.
	CleaningQueue(ctx context.Context) ([]*BedState, error)
	Turnovers(ctx context.Context, since time.Time) ([]*TurnoverRecord, error)
}
