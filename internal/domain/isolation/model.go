package isolation

import (
	"time"

	"github.com/google/uuid"
)

// Isolation categories, ordered by clinical restrictiveness in severityRank.
const (
	TypeContact    = "contact"
	TypeDroplet    = "droplet"
	TypeAirborne   = "airborne"
	TypeProtective = "protective"
)

// ValidTypes lists every recognised isolation category.
var ValidTypes = map[string]bool{
	TypeContact:    true,
	TypeDroplet:    true,
	TypeAirborne:   true,
	TypeProtective: true,
}

// PatientIsolation is the isolation view of a patient row.
type PatientIsolation struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	IsolationRequired  bool       `db:"isolation_required" json:"isolation_required"`
	IsolationType      *string    `db:"isolation_type" json:"isolation_type,omitempty"`
	IsolationStartDate *time.Time `db:"isolation_start_date" json:"isolation_start_date,omitempty"`
	IsolationEndDate   *time.Time `db:"isolation_end_date" json:"isolation_end_date,omitempty"`
	CurrentBedID       *uuid.UUID `db:"current_bed_id" json:"current_bed_id,omitempty"`
}

// Diagnosis is one coded diagnosis on a patient's chart.
type Diagnosis struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	DiagnosedAt time.Time `db:"diagnosed_at" json:"diagnosed_at"`
}

// LabResult is one resulted lab on a patient's chart.
type LabResult struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	TestName   string    `db:"test_name" json:"test_name"`
	Result     string    `db:"result" json:"result"`
	IsPositive bool      `db:"is_positive" json:"is_positive"`
	ResultedAt time.Time `db:"resulted_at" json:"resulted_at"`
}

// BedIsolationInfo is the isolation view of a bed row.
type BedIsolationInfo struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Unit             string    `db:"unit" json:"unit"`
	Status           string    `db:"status" json:"status"`
	IsolationCapable bool      `db:"isolation_capable" json:"isolation_capable"`
	IsolationType    *string   `db:"isolation_type" json:"isolation_type,omitempty"`
}

// CheckResult is the outcome of scanning a patient's chart for isolation
// triggers.
type CheckResult struct {
	PatientID         uuid.UUID `json:"patient_id"`
	IsolationRequired bool      `json:"isolation_required"`
	IsolationType     *string   `json:"isolation_type,omitempty"`
	MatchedCategories []string  `json:"matched_categories,omitempty"`
	Reasons           []string  `json:"reasons,omitempty"`
}

// RoomAvailability aggregates isolation-capable beds per unit and type.
type RoomAvailability struct {
	Unit           string  `json:"unit"`
	IsolationType  string  `json:"isolation_type"`
	Available      int     `json:"available"`
	Occupied       int     `json:"occupied"`
	Total          int     `json:"total"`
	UtilizationPct float64 `json:"utilization_pct"`
}
