package discharge

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	ClinicalSnapshot(ctx context.Context, admissionID uuid.UUID) (*ClinicalSnapshot, error)
	// ResolvedCategories lists barrier categories manually resolved for
	// the admission; scoring runs skip their deductions.
	ResolvedCategories(ctx context.Context, admissionID uuid.UUID) (map[string]bool, error)
	ResolveCategory(ctx context.Context, admissionID uuid.UUID, category, resolvedBy string, at time.Time) error
	GetPrediction(ctx context.Context, admissionID uuid.UUID) (*Prediction, error)
	UpsertPrediction(ctx context.Context, p *Prediction) error
	// InsertEvent appends an immutable scoring-run row.
	InsertEvent(ctx context.Context, p *Prediction) error
	ReadyPatients(ctx context.Context, minScore float64) ([]*Prediction, error)
	Metrics(ctx context.Context, since time.Time) (*Metrics, error)
}
