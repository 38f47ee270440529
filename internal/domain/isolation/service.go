package isolation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carestack/bedrock/internal/platform/apperror"
	"github.com/carestack/bedrock/internal/platform/audit"
	"github.com/carestack/bedrock/internal/platform/db"
)

// chartLookback bounds how far back the rule engine scans diagnoses and
// labs when deriving isolation requirements.
const chartLookback = 14 * 24 * time.Hour

type Service struct {
	repo  Repository
	audit audit.Recorder
	log   zerolog.Logger
	inTx  func(ctx context.Context, fn func(ctx context.Context) error) error
	now   func() time.Time
}

func NewService(repo Repository, recorder audit.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		audit: recorder,
		log:   logger,
		inTx:  db.InTx,
		now:   time.Now,
	}
}

// CheckRequirements scans the patient's recent diagnoses and positive labs
// for isolation triggers and persists the derived requirement onto the
// patient. When multiple categories match, the most clinically restrictive
// wins. Repeat calls are idempotent: the start date is stamped once.
func (s *Service) CheckRequirements(ctx context.Context, patientID uuid.UUID) (*CheckResult, error) {
	if _, err := s.repo.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	since := s.now().Add(-chartLookback)

	diagnoses, err := s.repo.RecentDiagnoses(ctx, patientID, since)
	if err != nil {
		return nil, apperror.Transient("load diagnoses", err)
	}
	labs, err := s.repo.PositiveLabResults(ctx, patientID, since)
	if err != nil {
		return nil, apperror.Transient("load lab results", err)
	}

	matched := make(map[string]bool)
	var reasons []string
	for _, d := range diagnoses {
		for _, category := range matchDiagnosis(d.Code) {
			if !matched[category] {
				matched[category] = true
			}
			reasons = append(reasons, fmt.Sprintf("diagnosis %s (%s) requires %s precautions", d.Code, d.Description, category))
		}
	}
	for _, l := range labs {
		for _, category := range matchLab(l.TestName, l.Result) {
			if !matched[category] {
				matched[category] = true
			}
			reasons = append(reasons, fmt.Sprintf("positive lab %q requires %s precautions", l.TestName, category))
		}
	}

	result := &CheckResult{PatientID: patientID, Reasons: reasons}
	if len(matched) == 0 {
		return result, nil
	}

	winner := mostRestrictive(matched)
	result.IsolationRequired = true
	result.IsolationType = &winner
	for c := range matched {
		result.MatchedCategories = append(result.MatchedCategories, c)
	}
	sort.Slice(result.MatchedCategories, func(i, j int) bool {
		return severityRank[result.MatchedCategories[i]] > severityRank[result.MatchedCategories[j]]
	})

	if err := s.repo.SetPatientIsolation(ctx, patientID, winner, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("patient_id", patientID.String()).
		Str("isolation_type", winner).
		Strs("categories", result.MatchedCategories).
		Msg("isolation requirement derived")

	return result, nil
}

// ValidateBedAssignment checks that the bed can take the patient: the bed
// must be available and, when isolation is required, isolation-capable
// with exactly the patient's isolation type. No cross-category
// substitution is permitted.
func (s *Service) ValidateBedAssignment(ctx context.Context, patientID, bedID uuid.UUID) error {
	patient, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return err
	}
	bed, err := s.repo.GetBed(ctx, bedID)
	if err != nil {
		return err
	}

	if bed.Status != "available" {
		return apperror.Conflict("bed %s is %s, not available", bedID, bed.Status)
	}

	if !patient.IsolationRequired {
		return nil
	}
	if patient.IsolationType == nil {
		return apperror.Validation("patient %s requires isolation but has no isolation type", patientID)
	}
	if !bed.IsolationCapable {
		return apperror.Validation("bed %s is not isolation capable", bedID)
	}
	if bed.IsolationType == nil || *bed.IsolationType != *patient.IsolationType {
		got := "none"
		if bed.IsolationType != nil {
			got = *bed.IsolationType
		}
		return apperror.Validation("bed %s provides %s isolation, patient requires %s", bedID, got, *patient.IsolationType)
	}
	return nil
}

// ClearIsolation lifts the patient's isolation requirement. A reason is
// mandatory; the clear and its audit row commit together.
func (s *Service) ClearIsolation(ctx context.Context, patientID uuid.UUID, clearedBy, reason string) error {
	if reason == "" {
		return apperror.Validation("a reason is required to clear isolation")
	}
	if clearedBy == "" {
		return apperror.Validation("cleared_by is required")
	}

	patient, err := s.repo.GetPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.IsolationRequired {
		return apperror.Validation("patient %s is not under isolation", patientID)
	}

	previousType := ""
	if patient.IsolationType != nil {
		previousType = *patient.IsolationType
	}

	return s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ClearPatientIsolation(txCtx, patientID, s.now().UTC()); err != nil {
			return err
		}
		return s.audit.Record(txCtx, &audit.Entry{
			EntityType: "patient",
			EntityID:   patientID.String(),
			Action:     "isolation_cleared",
			Detail: map[string]interface{}{
				"previous_type": previousType,
			},
			Reason:      &reason,
			PerformedBy: clearedBy,
		})
	})
}

// RoomAvailability aggregates isolation-capable beds per unit and type.
func (s *Service) RoomAvailability(ctx context.Context) ([]*RoomAvailability, error) {
	return s.repo.RoomAvailability(ctx)
}
