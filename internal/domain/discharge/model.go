package discharge

import (
	"time"

	"github.com/google/uuid"
)

// FeatureName gates every readiness operation.
const FeatureName = "discharge_predictions"

// Mobility levels reported on the admission.
const (
	MobilityIndependent = "independent"
	MobilityWheelchair  = "wheelchair"
	MobilityBedbound    = "bedbound"
)

// ClinicalSnapshot is everything the scorer needs about one admission,
// gathered in a single repository read.
type ClinicalSnapshot struct {
	AdmissionID uuid.UUID
	PatientID   uuid.UUID
	Unit        string
	AdmittedAt  time.Time

	UnstableVitals24h bool
	PendingLabCount   int
	MonitoredMedCount int
	Mobility          string
	PainLevel         int

	// Discharge checklist.
	Destination        *string
	PlacementArranged  bool
	HomeHealthArranged bool
	TransportArranged  bool
	MedRecComplete     bool
	EducationCompleted int
	FollowUpScheduled  bool
}

// Barrier is one triggered deduction, surfaced to care coordination.
type Barrier struct {
	ID                  uuid.UUID `json:"id"`
	Category            string    `json:"category"`
	Description         string    `json:"description"`
	Severity            string    `json:"severity"`
	EstimatedDelayHours int       `json:"estimated_delay_hours"`
}

// Intervention is the recommended action for one barrier category.
type Intervention struct {
	BarrierCategory string `json:"barrier_category"`
	Role            string `json:"role"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
}

// Prediction is the current readiness record for an admission. One row
// per admission, upserted on every scoring run; each run also appends an
// immutable event row for trend analysis.
type Prediction struct {
	ID                     uuid.UUID       `json:"id"`
	AdmissionID            uuid.UUID       `json:"admission_id"`
	PatientID              uuid.UUID       `json:"patient_id"`
	Unit                   string          `json:"unit"`
	MedicalScore           float64         `json:"medical_score"`
	SocialScore            float64         `json:"social_score"`
	OverallScore           float64         `json:"overall_score"`
	PredictedDischargeDate time.Time       `json:"predicted_discharge_date"`
	Confidence             string          `json:"confidence"`
	Barriers               []*Barrier      `json:"barriers"`
	Interventions          []*Intervention `json:"interventions"`
	ComputedAt             time.Time       `json:"computed_at"`
}

// Metrics summarizes discharge performance over a window.
type Metrics struct {
	WindowStart                time.Time      `json:"window_start"`
	Discharges                 int            `json:"discharges"`
	AverageLOSHours            float64        `json:"average_los_hours"`
	DelayedDischargeRate       float64        `json:"delayed_discharge_rate"`
	AverageDelayHours          float64        `json:"average_delay_hours"`
	BarrierDistribution        map[string]int `json:"barrier_distribution"`
	InterventionCompletionRate float64        `json:"intervention_completion_rate"`
}
