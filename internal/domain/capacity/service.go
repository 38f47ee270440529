package capacity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
)

// dischargeReadyScore mirrors the threshold the transfer engine uses for
// scheduled discharges.
const dischargeReadyScore = 70

type FlagChecker interface {
	IsEnabled(ctx context.Context, feature string) bool
}

type Service struct {
	repo  Repository
	flags FlagChecker
	log   zerolog.Logger
	now   func() time.Time
}

// Every operation here is read-only, so no transaction wrapper is needed.
func NewService(repo Repository, flags FlagChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		flags: flags,
		log:   logger.With().Str("component", "capacity").Logger(),
		now:   time.Now,
	}
}

// PredictCapacity projects the unit's census at 6-hour checkpoints over
// the horizon. Sparse history lowers confidence, never errors.
func (s *Service) PredictCapacity(ctx context.Context, unit string, horizonHours int) (*Forecast, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if !validHorizons[horizonHours] {
		return nil, apperror.Validation("horizon must be 24, 48, or 72 hours, got %d", horizonHours)
	}

	occ, err := s.repo.UnitOccupancy(ctx, unit)
	if err != nil {
		return nil, err
	}
	dischargeTimes, err := s.repo.DischargeTimes(ctx, unit, dischargeReadyScore)
	if err != nil {
		return nil, apperror.Transient("list scheduled discharges", err)
	}

	now := s.now().UTC()
	historyCount, err := s.repo.AdmissionCount(ctx, unit, now.AddDate(0, 0, -admissionHistoryDays))
	if err != nil {
		return nil, apperror.Transient("count recent admissions", err)
	}
	admissionsPerDay := float64(historyCount) / float64(admissionHistoryDays)
	expectedAdmissions := admissionsPerDay * float64(horizonHours) / 24

	return &Forecast{
		Unit:            occ.Unit,
		HorizonHours:    horizonHours,
		Capacity:        occ.Capacity,
		CurrentOccupied: occ.Occupied,
		Points:          projectPoints(occ, dischargeTimes, expectedAdmissions, historyCount, horizonHours, now),
		ComputedAt:      now,
	}, nil
}

// SeasonalPatterns summarizes occupancy by calendar month over the last
// n months.
func (s *Service) SeasonalPatterns(ctx context.Context, months int) (*SeasonalAnalysis, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}
	if months <= 0 {
		months = 12
	}
	history, err := s.repo.DailyCensus(ctx, s.now().UTC().AddDate(0, -months, 0))
	if err != nil {
		return nil, apperror.Transient("load census history", err)
	}
	return analyzeSeasonal(history, months), nil
}

// StaffingRecommendations converts the nearest census forecast into
// per-shift headcounts for the date.
func (s *Service) StaffingRecommendations(ctx context.Context, unit string, date time.Time) (*StaffingPlan, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}

	horizon := 24
	if hoursOut := date.Sub(s.now()).Hours(); hoursOut > 48 {
		horizon = 72
	} else if hoursOut > 24 {
		horizon = 48
	}
	forecast, err := s.PredictCapacity(ctx, unit, horizon)
	if err != nil {
		return nil, err
	}

	// Nearest checkpoint to the requested date carries the census.
	census := float64(forecast.CurrentOccupied)
	if len(forecast.Points) > 0 {
		nearest := forecast.Points[0]
		for _, p := range forecast.Points {
			if absDuration(p.At.Sub(date)) < absDuration(nearest.At.Sub(date)) {
				nearest = p
			}
		}
		census = float64(nearest.ProjectedOccupied)
	}

	ratios := ratiosFor(unit)
	plan := &StaffingPlan{Unit: unit, Date: date}
	for _, shift := range shiftMultipliers {
		expected := census * shift.Multiplier
		plan.Shifts = append(plan.Shifts, &ShiftStaffing{
			Shift:          shift.Shift,
			ExpectedCensus: expected,
			Nurses:         staffFor(expected, ratios.Nurse),
			Doctors:        staffFor(expected, ratios.Doctor),
			Support:        staffFor(expected, ratios.Support),
		})
	}
	return plan, nil
}

func staffFor(census, patientsPerStaff float64) int {
	if census <= 0 {
		return 0
	}
	return int(math.Ceil(census / patientsPerStaff))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// AssessSurge evaluates the unit against the 90% surge trigger.
func (s *Service) AssessSurge(ctx context.Context, unit string) (*SurgeAssessment, error) {
	if !s.flags.IsEnabled(ctx, FeatureName) {
		return nil, apperror.FeatureDisabled(FeatureName)
	}

	occ, err := s.repo.UnitOccupancy(ctx, unit)
	if err != nil {
		return nil, err
	}

	assessment := &SurgeAssessment{
		Unit:          occ.Unit,
		Capacity:      occ.Capacity,
		Occupied:      occ.Occupied,
		OccupancyRate: occ.Rate(),
	}

	switch {
	case assessment.OccupancyRate >= surgeTrigger:
		activatable, err := s.repo.ActivatableBeds(ctx, unit)
		if err != nil {
			return nil, apperror.Transient("count activatable beds", err)
		}
		assessment.Tier = "activated"
		assessment.ActivatableBeds = activatable
		assessment.AdditionalStaff = staffFor(float64(activatable), surgeStaffPer)
		assessment.Equipment = equipmentFor(unit)
		assessment.Recommendation = fmt.Sprintf(
			"Surge triggered at %.0f%% occupancy: activate %d bed(s) and call in %d additional staff.",
			assessment.OccupancyRate*100, activatable, assessment.AdditionalStaff)
		s.log.Warn().
			Str("unit", unit).
			Float64("occupancy_rate", assessment.OccupancyRate).
			Int("activatable_beds", activatable).
			Msg("surge capacity activated")
	case assessment.OccupancyRate >= surgeWarning:
		assessment.Tier = "warning"
		assessment.Recommendation = fmt.Sprintf(
			"Occupancy at %.0f%%: review pending discharges and prepare surge resources.",
			assessment.OccupancyRate*100)
	default:
		assessment.Tier = "normal"
		assessment.Recommendation = "Occupancy within normal operating range."
	}
	return assessment, nil
}
