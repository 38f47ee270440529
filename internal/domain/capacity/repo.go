package capacity

import (
	"context"
	"time"
)

type Repository interface {
	UnitOccupancy(ctx context.Context, unit string) (*Occupancy, error)
	// DischargeTimes lists predicted discharge dates for the unit from
	// readiness records at or above minScore.
	DischargeTimes(ctx context.Context, unit string, minScore float64) ([]time.Time, error)
	AdmissionCount(ctx context.Context, unit string, since time.Time) (int, error)
	DailyCensus(ctx context.Context, since time.Time) ([]*DailyCensus, error)
	// ActivatableBeds counts out-of-service non-isolation beds that can
	// be brought online for surge.
	ActivatableBeds(ctx context.Context, unit string) (int, error)
}
