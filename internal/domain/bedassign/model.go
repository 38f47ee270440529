package bedassign

import (
	"time"

	"github.com/google/uuid"
)

// FeatureName gates every recommendation request.
const FeatureName = "bed_management"

// Requirements describes the clinical constraints for a placement request.
// Boolean fields are hard constraints only when set; a bed missing an
// un-required capability is still a candidate.
type Requirements struct {
	PatientID         uuid.UUID `json:"patient_id"`
	IsolationRequired bool      `json:"isolation_required"`
	IsolationType     *string   `json:"isolation_type,omitempty"`
	TelemetryRequired bool      `json:"telemetry_required"`
	OxygenRequired    bool      `json:"oxygen_required"`
	PreferredUnit     *string   `json:"preferred_unit,omitempty"`
	NearNursesStation bool      `json:"near_nurses_station"`
	BariatricRequired bool      `json:"bariatric_required"`
}

// Bed is the candidate projection the scorer works over.
type Bed struct {
	ID                uuid.UUID `db:"id" json:"id"`
	RoomNumber        string    `db:"room_number" json:"room_number"`
	BedNumber         string    `db:"bed_number" json:"bed_number"`
	Unit              string    `db:"unit" json:"unit"`
	Status            string    `db:"status" json:"status"`
	IsolationCapable  bool      `db:"isolation_capable" json:"isolation_capable"`
	IsolationType     *string   `db:"isolation_type" json:"isolation_type,omitempty"`
	HasTelemetry      bool      `db:"has_telemetry" json:"has_telemetry"`
	HasOxygen         bool      `db:"has_oxygen" json:"has_oxygen"`
	NearNursesStation bool      `db:"near_nurses_station" json:"near_nurses_station"`
	Bariatric         bool      `db:"bariatric" json:"bariatric"`
	CleaningStatus    string    `db:"cleaning_status" json:"cleaning_status"`
	// Patients per nurse on the bed's unit; zero when staffing is unknown.
	UnitStaffRatio float64 `db:"unit_staff_ratio" json:"unit_staff_ratio"`
}

// Recommendation is one scored candidate.
type Recommendation struct {
	Bed        *Bed     `json:"bed"`
	Score      float64  `json:"score"`
	Confidence string   `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// PatientPlacement is the slice of the patient row the assignment snapshot
// is taken from.
type PatientPlacement struct {
	ID                uuid.UUID  `db:"id"`
	IsolationRequired bool       `db:"isolation_required"`
	IsolationType     *string    `db:"isolation_type"`
	CurrentBedID      *uuid.UUID `db:"current_bed_id"`
}

// Assignment is one bed_assignments row. Isolation fields are snapshotted
// from the patient at assignment time so the record stays meaningful after
// the requirement is cleared.
type Assignment struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientID         uuid.UUID `db:"patient_id" json:"patient_id"`
	BedID             uuid.UUID `db:"bed_id" json:"bed_id"`
	AssignedBy        string    `db:"assigned_by" json:"assigned_by"`
	Reasoning         string    `db:"reasoning" json:"reasoning"`
	IsolationRequired bool      `db:"isolation_required" json:"isolation_required"`
	IsolationType     *string   `db:"isolation_type" json:"isolation_type,omitempty"`
	AssignedAt        time.Time `db:"assigned_at" json:"assigned_at"`
}
