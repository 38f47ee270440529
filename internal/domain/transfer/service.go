package transfer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/db"
	"github.com/carestack/bedrock/internal/platform/notify"
)

// dischargeReadyScore is the readiness threshold at which an admission
// counts as a scheduled discharge for availability forecasting.
const dischargeReadyScore = 70

// notifyDedupWindow suppresses repeat transfer notifications for the same
// admission and unit.
const notifyDedupWindow = 30 * time.Minute

type FlagChecker interface {
	IsEnabled(ctx context.Context, feature string) bool
}

type Service struct {
	repo   Repository
	outbox notify.Outbox
	flags  FlagChecker
	log    zerolog.Logger
	inTx   func(ctx context.Context, fn func(ctx context.Context) error) error
	now    func() time.Time
}

func NewService(repo Repository, outbox notify.Outbox, flags FlagChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		outbox: outbox,
		flags:  flags,
		log:    logger.With().Str("component", "transfer").Logger(),
		inTx:   db.InTx,
		now:    time.Now,
	}
}

// PrioritizeEDPatients scores every boarding ED admission and persists the
// result, highest priority first.
func (s *Service) PrioritizeEDPatients(ctx context.Context, unit *string) ([]*Priority, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}

	patients, err := s.repo.AwaitingTransfer(ctx, unit)
	if err != nil {
		return nil, apperror.Transient("list boarding admissions", err)
	}

	now := s.now().UTC()
	priorities := make([]*Priority, 0, len(patients))
	err = s.inTx(ctx, func(ctx context.Context) error {
		for _, p := range patients {
			wait := 0.0
			if p.AwaitingSince != nil {
				wait = now.Sub(*p.AwaitingSince).Hours()
			}
			if wait < 0 {
				wait = 0
			}
			pr := &Priority{
				ID:                uuid.New(),
				AdmissionID:       p.AdmissionID,
				PatientID:         p.PatientID,
				Acuity:            p.Acuity,
				TargetUnit:        p.TargetUnit,
				WaitHours:         wait,
				IsolationRequired: p.IsolationRequired,
				Score:             scoreTransfer(p, wait),
				ComputedAt:        now,
			}
			if err := s.repo.UpsertPriority(ctx, pr); err != nil {
				return err
			}
			priorities = append(priorities, pr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(priorities, func(i, j int) bool { return priorities[i].Score > priorities[j].Score })
	return priorities, nil
}

// OptimizeTiming layers a tier, reasoning, and an estimated bed-available
// time over the current priorities.
func (s *Service) OptimizeTiming(ctx context.Context, unit *string) ([]*Timing, error) {
	priorities, err := s.PrioritizeEDPatients(ctx, unit)
	if err != nil {
		return nil, err
	}

	// Forecasts are computed once per target unit, not per patient.
	forecasts := make(map[string]*AvailabilityForecast)
	timings := make([]*Timing, 0, len(priorities))
	for _, p := range priorities {
		fc, ok := forecasts[p.TargetUnit]
		if !ok {
			fc, err = s.PredictAvailability(ctx, p.TargetUnit, availabilityCheckpoints[len(availabilityCheckpoints)-1])
			if err != nil {
				return nil, err
			}
			forecasts[p.TargetUnit] = fc
		}

		tier := priorityTier(p.Score)
		timings = append(timings, &Timing{
			Priority:          p,
			Tier:              tier,
			Reasoning:         timingReasoning(p, tier),
			EstimatedBedAvail: s.estimateBedAvailable(p, fc),
		})
	}
	return timings, nil
}

// estimateBedAvailable answers "now" when the unit already has a free
// bed, otherwise the first checkpoint at or after the one the patient's
// acuity selects with a discharge scheduled, otherwise the last
// checkpoint as a fallback.
func (s *Service) estimateBedAvailable(p *Priority, fc *AvailabilityForecast) time.Time {
	if fc.CurrentAvailable > 0 {
		return fc.ComputedAt
	}
	start := acuityCheckpoint(p.Acuity)
	for _, point := range fc.Points {
		if point.HoursAhead >= start && point.PredictedAvailable > 0 {
			return point.At
		}
	}
	return fc.ComputedAt.Add(time.Duration(availabilityCheckpoints[len(availabilityCheckpoints)-1]) * time.Hour)
}

// PredictAvailability buckets scheduled discharges at the fixed
// checkpoints up to hours ahead.
func (s *Service) PredictAvailability(ctx context.Context, unit string, hours int) (*AvailabilityForecast, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if unit == "" {
		return nil, apperror.Validation("unit is required")
	}
	if hours <= 0 {
		hours = availabilityCheckpoints[len(availabilityCheckpoints)-1]
	}

	available, err := s.repo.AvailableBedCount(ctx, unit)
	if err != nil {
		return nil, apperror.Transient("count available beds", err)
	}
	dischargeTimes, err := s.repo.DischargeTimes(ctx, unit, dischargeReadyScore)
	if err != nil {
		return nil, apperror.Transient("list scheduled discharges", err)
	}

	now := s.now().UTC()
	fc := &AvailabilityForecast{
		Unit:             unit,
		CurrentAvailable: available,
		ComputedAt:       now,
	}
	for _, h := range availabilityCheckpoints {
		if h > hours {
			break
		}
		at := now.Add(time.Duration(h) * time.Hour)
		scheduled := 0
		for _, t := range dischargeTimes {
			if !t.After(at) {
				scheduled++
			}
		}
		fc.Points = append(fc.Points, &ForecastPoint{
			HoursAhead:          h,
			At:                  at,
			PredictedAvailable:  available + scheduled,
			ScheduledDischarges: scheduled,
		})
	}
	if len(fc.Points) > 0 {
		fc.Confidence = forecastConfidence(fc.Points[len(fc.Points)-1].PredictedAvailable)
	} else {
		fc.Confidence = "low"
	}
	return fc, nil
}

// NotifyTransfer tells the receiving unit's staff a patient is coming and
// flips the admission to transfer_in_progress, in one transaction. Repeat
// calls inside the de-dup window are no-ops so a double-clicked button
// does not page a unit twice.
func (s *Service) NotifyTransfer(ctx context.Context, admissionID uuid.UUID, unit, notifiedBy string) error {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return apperror.FeatureDisabled(FeatureName)
	}
	if notifiedBy == "" {
		return apperror.Validation("notified_by is required")
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		admission, err := s.repo.GetAdmission(ctx, admissionID)
		if err != nil {
			return err
		}
		receiving, err := s.repo.GetUnit(ctx, unit)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		recent, err := s.outbox.CountSince(ctx, admissionID, receiving.ID, now.Add(-notifyDedupWindow))
		if err != nil {
			return err
		}
		if recent > 0 {
			s.log.Info().
				Str("admission_id", admissionID.String()).
				Str("unit", unit).
				Msg("transfer notification suppressed inside de-dup window")
			return nil
		}

		staff, err := s.repo.UnitStaff(ctx, receiving.ID)
		if err != nil {
			return err
		}
		priority := notify.PriorityNormal
		if admission.Acuity <= 2 {
			priority = notify.PriorityUrgent
		}
		for _, member := range staff {
			n := &notify.Notification{
				RecipientID: member.ID,
				Type:        "transfer_incoming",
				Priority:    priority,
				Subject:     fmt.Sprintf("Incoming transfer to %s", unit),
				Body: fmt.Sprintf("Acuity %d patient transferring to %s, initiated by %s.",
					admission.Acuity, unit, notifiedBy),
				AdmissionID: &admissionID,
				UnitID:      &receiving.ID,
			}
			if err := s.outbox.Create(ctx, n); err != nil {
				return err
			}
		}

		return s.repo.SetAdmissionStatus(ctx, admissionID, "transfer_in_progress")
	})
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
