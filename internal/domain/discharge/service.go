package discharge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
)

// DefaultReadyScore is the minimum overall score for the ready-patients
// list when the caller does not give one.
const DefaultReadyScore = 80

type FlagChecker interface {
	IsEnabled(ctx context.Context, feature string) bool
}

type Service struct {
	repo  Repository
	flags FlagChecker
	log   zerolog.Logger
	inTx  func(ctx context.Context, fn func(ctx context.Context) error) error
	now   func() time.Time
}

func NewService(repo Repository, flags FlagChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		flags: flags,
		log:   logger.With().Str("component", "discharge").Logger(),
		inTx:  db.InTx,
		now:   time.Now,
	}
}

// Predict scores the admission and persists the result: the current row
// is upserted and a history event appended, in one transaction.
func (s *Service) Predict(ctx context.Context, admissionID uuid.UUID) (*Prediction, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}

	var prediction *Prediction
	err := s.inTx(ctx, func(ctx context.Context) error {
		snap, err := s.repo.ClinicalSnapshot(ctx, admissionID)
		if err != nil {
			return err
		}
		resolved, err := s.repo.ResolvedCategories(ctx, admissionID)
		if err != nil {
			return err
		}

		p := compute(snap, resolved, s.now().UTC())
		p.ID = uuid.New()
		if err := s.repo.UpsertPrediction(ctx, p); err != nil {
			return err
		}
		if err := s.repo.InsertEvent(ctx, p); err != nil {
			return err
		}
		prediction = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("admission_id", admissionID.String()).
		Float64("overall_score", prediction.OverallScore).
		Int("barriers", len(prediction.Barriers)).
		Msg("discharge readiness computed")
	return prediction, nil
}

// ResolveBarrier marks one open barrier resolved and recomputes the whole
// prediction. The barrier id must belong to the admission's current
// prediction.
func (s *Service) ResolveBarrier(ctx context.Context, admissionID, barrierID uuid.UUID, resolvedBy string) (*Prediction, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if resolvedBy == "" {
		return nil, apperror.Validation("resolved_by is required")
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetPrediction(ctx, admissionID)
		if err != nil {
			return err
		}
		var barrier *Barrier
		for _, b := range current.Barriers {
			if b.ID == barrierID {
				barrier = b
				break
			}
		}
		if barrier == nil {
			return apperror.Validation("barrier %s is not open on admission %s", barrierID, admissionID)
		}
		return s.repo.ResolveCategory(ctx, admissionID, barrier.Category, resolvedBy, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	return s.Predict(ctx, admissionID)
}

// ReadyPatients lists admissions at or above the score threshold, most
// ready first.
func (s *Service) ReadyPatients(ctx context.Context, minScore float64) ([]*Prediction, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if minScore <= 0 {
		minScore = DefaultReadyScore
	}
	return s.repo.ReadyPatients(ctx, minScore)
}

func (s *Service) Metrics(ctx context.Context, window time.Duration) (*Metrics, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return s.repo.Metrics(ctx, s.now().UTC().Add(-window))
}

func (s *Service) GetPrediction(ctx context.Context, admissionID uuid.UUID) (*Prediction, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	return s.repo.GetPrediction(ctx, admissionID)
}
