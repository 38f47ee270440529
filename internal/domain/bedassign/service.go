package bedassign

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/domain/isolation"
	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
)

// FlagChecker is the slice of the feature-flag service this engine needs.
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
		log:   logger.With().Str("component", "bedassign").Logger(),
		inTx:  db.InTx,
		now:   time.Now,
	}
}

// RecommendBeds scores the available beds against the request and returns
// the top three. Beds that fail a hard constraint are never returned; an
// empty slice means nothing currently fits.
func (s *Service) RecommendBeds(ctx context.Context, req *Requirements) ([]*Recommendation, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if req.IsolationRequired {
		if req.IsolationType == nil {
			return nil, apperror.Validation("isolation_type is required when isolation_required is set")
		}
		if !isolation.ValidTypes[*req.IsolationType] {
			return nil, apperror.Validation("unknown isolation type %q", *req.IsolationType)
		}
	}

	beds, err := s.repo.AvailableBeds(ctx, req.PreferredUnit)
	if err != nil {
		return nil, apperror.Transient("list available beds", err)
	}

	var candidates []*Bed
	for _, b := range beds {
		if passesFilters(b, req) {
			candidates = append(candidates, b)
			if len(candidates) == maxCandidates {
				break
			}
		}
	}
	if len(candidates) == 0 {
		s.log.Info().Str("patient_id", req.PatientID.String()).Msg("no beds pass placement filters")
		return []*Recommendation{}, nil
	}

	recs := make([]*Recommendation, 0, len(candidates))
	for _, b := range candidates {
		recs = append(recs, scoreBed(b, req))
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > 3 {
		recs = recs[:3]
	}

	s.log.Debug().
		Str("patient_id", req.PatientID.String()).
		Int("candidates", len(candidates)).
		Float64("top_score", recs[0].Score).
		Msg("bed recommendations computed")
	return recs, nil
}

// AssignBed places the patient in the bed. The assignment row, the bed
// flip, and the patient link commit in one transaction; the bed flip is
// conditional on the bed still being available, so a concurrent winner
// leaves the loser with a Conflict instead of a double booking.
func (s *Service) AssignBed(ctx context.Context, patientID, bedID uuid.UUID, assignedBy, reasoning string) (*Assignment, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if assignedBy == "" {
		return nil, apperror.Validation("assigned_by is required")
	}

	var assignment *Assignment
	err := s.inTx(ctx, func(ctx context.Context) error {
		patient, err := s.repo.GetPatient(ctx, patientID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		a := &Assignment{
			ID:                uuid.New(),
			PatientID:         patientID,
			BedID:             bedID,
			AssignedBy:        assignedBy,
			Reasoning:         reasoning,
			IsolationRequired: patient.IsolationRequired,
			IsolationType:     patient.IsolationType,
			AssignedAt:        now,
		}
		if err := s.repo.InsertAssignment(ctx, a); err != nil {
			return err
		}

		n, err := s.repo.OccupyBed(ctx, bedID, now)
		if err != nil {
			return err
		}
		if n != 1 {
			if _, getErr := s.repo.GetBed(ctx, bedID); getErr != nil {
				return getErr
			}
			return apperror.Conflict("bed %s is no longer available", bedID)
		}

		if err := s.repo.LinkPatientBed(ctx, patientID, bedID); err != nil {
			return err
		}
		assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("patient_id", patientID.String()).
		Str("bed_id", bedID.String()).
		Str("assigned_by", assignedBy).
		Msg("bed assigned")
	return assignment, nil
}
