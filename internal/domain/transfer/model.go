package transfer

import (
	"time"

	"github.com/google/uuid"
)

// FeatureName gates every transfer operation.
const FeatureName = "transfer_priority"

// EDPatient is one emergency-department admission awaiting a ward bed.
// AwaitingSince is nil when the admission was never stamped as boarding
// (GetAdmission does not filter on status); the wait then counts as zero.
type EDPatient struct {
	AdmissionID       uuid.UUID  `db:"admission_id" json:"admission_id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	Acuity            int        `db:"acuity" json:"acuity"`
	TargetUnit        string     `db:"target_unit" json:"target_unit"`
	AwaitingSince     *time.Time `db:"awaiting_since" json:"awaiting_since,omitempty"`
	IsolationRequired bool       `db:"isolation_required" json:"isolation_required"`
}

// Priority is the current transfer-priority record for one admission,
// upserted on every scoring run.
type Priority struct {
	ID                uuid.UUID `db:"id" json:"id"`
	AdmissionID       uuid.UUID `db:"admission_id" json:"admission_id"`
	PatientID         uuid.UUID `db:"patient_id" json:"patient_id"`
	Acuity            int       `db:"acuity" json:"acuity"`
	TargetUnit        string    `db:"target_unit" json:"target_unit"`
	WaitHours         float64   `db:"wait_hours" json:"wait_hours"`
	IsolationRequired bool      `db:"isolation_required" json:"isolation_required"`
	Score             float64   `db:"score" json:"score"`
	ComputedAt        time.Time `db:"computed_at" json:"computed_at"`
}

// Timing is a priority enriched with a tier, reasoning, and an estimated
// bed-available time for the target unit.
type Timing struct {
	*Priority
	Tier              string    `json:"tier"`
	Reasoning         string    `json:"reasoning"`
	EstimatedBedAvail time.Time `json:"estimated_bed_available"`
}

// ForecastPoint is bed availability at one checkpoint.
type ForecastPoint struct {
	HoursAhead          int       `json:"hours_ahead"`
	At                  time.Time `json:"at"`
	PredictedAvailable  int       `json:"predicted_available"`
	ScheduledDischarges int       `json:"scheduled_discharges"`
}

// AvailabilityForecast is the bucketed bed-availability prediction for a
// unit.
type AvailabilityForecast struct {
	Unit             string           `json:"unit"`
	CurrentAvailable int              `json:"current_available"`
	Points           []*ForecastPoint `json:"points"`
	Confidence       string           `json:"confidence"`
	ComputedAt       time.Time        `json:"computed_at"`
}

// Unit is the receiving-unit projection used to address notifications.
type Unit struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

// StaffMember is a notification recipient on the receiving unit.
type StaffMember struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Role string    `db:"role" json:"role"`
}

// Metrics summarizes transfer performance over a window.
type Metrics struct {
	WindowStart          time.Time `json:"window_start"`
	Transfers            int       `json:"transfers"`
	AverageBoardingHours float64   `json:"average_boarding_hours"`
	WithinSLARate        float64   `json:"within_sla_rate"`
	AveragePriority      float64   `json:"average_priority"`
	UrgentCount          int       `json:"urgent_count"`
}
