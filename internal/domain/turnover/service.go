package turnover

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
)

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
		log:   logger.With().Str("component", "turnover").Logger(),
		inTx:  db.InTx,
		now:   time.Now,
	}
}

// UpdateBedStatus moves the bed through the state machine, stamping
// lifecycle timestamps and logging the change, all in one transaction.
// Completing a clean (cleaning to available) also writes a turnover
// record against the bed's target and drops the priority back to
// routine.
func (s *Service) UpdateBedStatus(ctx context.Context, bedID uuid.UUID, status string, cleaningStatus, cleaningPriority *string, changedBy string) (*BedState, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if changedBy == "" {
		return nil, apperror.Validation("changed_by is required")
	}
	if _, ok := validTransitions[status]; !ok {
		return nil, apperror.Validation("unknown bed status %q", status)
	}
	if cleaningPriority != nil && !validCleaningPriority(*cleaningPriority) {
		return nil, apperror.Validation("unknown cleaning priority %q", *cleaningPriority)
	}

	var updated *BedState
	err := s.inTx(ctx, func(ctx context.Context) error {
		bed, err := s.repo.GetBedState(ctx, bedID)
		if err != nil {
			return err
		}
		if !transitionAllowed(bed.Status, status) {
			return apperror.Validation("bed cannot move from %s to %s", bed.Status, status)
		}

		now := s.now().UTC()
		oldStatus := bed.Status
		completedCleaning := oldStatus == StatusCleaning && status == StatusAvailable

		bed.Status = status
		switch status {
		case StatusOccupied:
			bed.OccupiedAt = &now
		case StatusAvailable:
			bed.AvailableAt = &now
		case StatusCleaning:
			bed.CleaningStartedAt = &now
			if cleaningStatus == nil {
				dirty := CleaningDirty
				cleaningStatus = &dirty
			}
		}
		if cleaningStatus != nil {
			bed.CleaningStatus = *cleaningStatus
			if *cleaningStatus == CleaningClean {
				bed.LastCleanedAt = &now
			}
		}
		if cleaningPriority != nil {
			bed.CleaningPriority = *cleaningPriority
		}

		// The target reflects the priority the clean ran under, so
		// capture it before the completed clean resets the bed to
		// routine.
		target := turnoverTarget(bed)
		if completedCleaning {
			bed.CleaningPriority = PriorityRoutine
		}

		if err := s.repo.UpdateState(ctx, bed); err != nil {
			return err
		}
		if err := s.repo.InsertStatusLog(ctx, &StatusChange{
			ID:        uuid.New(),
			BedID:     bedID,
			OldStatus: oldStatus,
			NewStatus: status,
			ChangedBy: changedBy,
			ChangedAt: now,
		}); err != nil {
			return err
		}

		if completedCleaning && bed.CleaningStartedAt != nil {
			duration := now.Sub(*bed.CleaningStartedAt).Minutes()
			record := &TurnoverRecord{
				ID:              uuid.New(),
				BedID:           bedID,
				Unit:            bed.Unit,
				DurationMinutes: duration,
				TargetMinutes:   target,
				ExceededTarget:  duration > target,
				CompletedAt:     now,
			}
			if err := s.repo.InsertTurnover(ctx, record); err != nil {
				return err
			}
			if record.ExceededTarget {
				s.log.Warn().
					Str("bed_id", bedID.String()).
					Str("unit", bed.Unit).
					Float64("duration_minutes", duration).
					Float64("target_minutes", target).
					Msg("bed turnover exceeded target")
			}
		}
		updated = bed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PrioritizeCleaning ranks the cleaning queue: requested priority tier
// first (stat, urgent, routine), then urgency within the tier — scarce
// bed types and how long each has been waiting against its target.
func (s *Service) PrioritizeCleaning(ctx context.Context) ([]*CleaningTask, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}

	beds, err := s.repo.CleaningQueue(ctx)
	if err != nil {
		return nil, apperror.Transient("list cleaning queue", err)
	}

	now := s.now().UTC()
	tasks := make([]*CleaningTask, 0, len(beds))
	for _, bed := range beds {
		wait := 0.0
		if bed.CleaningStartedAt != nil {
			wait = now.Sub(*bed.CleaningStartedAt).Minutes()
		}
		target := turnoverTarget(bed)
		tasks = append(tasks, &CleaningTask{
			Bed:           bed,
			WaitMinutes:   wait,
			TargetMinutes: target,
			UrgencyScore:  cleaningBasePriority(bed) + (wait/target)*100,
			Action:        cleaningAction(wait, target),
		})
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := priorityRank(tasks[i].Bed), priorityRank(tasks[j].Bed)
		if ri != rj {
			return ri > rj
		}
		return tasks[i].UrgencyScore > tasks[j].UrgencyScore
	})
	return tasks, nil
}

// Metrics aggregates turnover durations per unit and overall.
func (s *Service) Metrics(ctx context.Context, window time.Duration) (*Metrics, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	since := s.now().UTC().Add(-window)

	records, err := s.repo.Turnovers(ctx, since)
	if err != nil {
		return nil, apperror.Transient("load turnover records", err)
	}

	m := &Metrics{
		WindowStart: since,
		Overall:     computeStats(records),
		PerUnit:     make(map[string]*Stats),
	}
	byUnit := make(map[string][]*TurnoverRecord)
	for _, r := range records {
		byUnit[r.Unit] = append(byUnit[r.Unit], r)
	}
	for unit, rs := range byUnit {
		m.PerUnit[unit] = computeStats(rs)
	}
	return m, nil
}

func computeStats(records []*TurnoverRecord) *Stats {
	stats := &Stats{Count: len(records)}
	if len(records) == 0 {
		return stats
	}

	durations := make([]float64, 0, len(records))
	sum := 0.0
	exceeded := 0
	for _, r := range records {
		durations = append(durations, r.DurationMinutes)
		sum += r.DurationMinutes
		if r.ExceededTarget {
			exceeded++
		}
	}
	sort.Float64s(durations)

	stats.AverageMinutes = sum / float64(len(durations))
	stats.MinMinutes = durations[0]
	stats.MaxMinutes = durations[len(durations)-1]
	stats.ExceededRate = float64(exceeded) / float64(len(durations))
	mid := len(durations) / 2
	if len(durations)%2 == 0 {
		stats.MedianMinutes = (durations[mid-1] + durations[mid]) / 2
	} else {
		stats.MedianMinutes = durations[mid]
	}
	return stats
}
