package turnover

import (
	"time"

	"github.com/google/uuid"
)

// FeatureName gates every turnover operation.
const FeatureName = "turnover_tracking"

// Bed statuses.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusCleaning    = "cleaning"
	StatusMaintenance = "maintenance"
	StatusReserved    = "reserved"
)

// Cleaning statuses.
const (
	CleaningDirty      = "dirty"
	CleaningInProgress = "in_progress"
	CleaningClean      = "clean"
)

// Cleaning priorities. Stat tightens the turnover target and jumps the
// queue; urgent jumps the queue at the normal target.
const (
	PriorityStat    = "stat"
	PriorityUrgent  = "urgent"
	PriorityRoutine = "routine"
)

// BedState is the turnover projection of one bed.
type BedState struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Unit              string     `db:"unit" json:"unit"`
	RoomNumber        string     `db:"room_number" json:"room_number"`
	Status            string     `db:"status" json:"status"`
	CleaningStatus    string     `db:"cleaning_status" json:"cleaning_status"`
	CleaningPriority  string     `db:"cleaning_priority" json:"cleaning_priority"`
	IsolationCapable  bool       `db:"isolation_capable" json:"isolation_capable"`
	HasTelemetry      bool       `db:"has_telemetry" json:"has_telemetry"`
	OccupiedAt        *time.Time `db:"occupied_at" json:"occupied_at,omitempty"`
	AvailableAt       *time.Time `db:"available_at" json:"available_at,omitempty"`
	CleaningStartedAt *time.Time `db:"cleaning_started_at" json:"cleaning_started_at,omitempty"`
	LastCleanedAt     *time.Time `db:"last_cleaned_at" json:"last_cleaned_at,omitempty"`
}

// StatusChange is one bed_status_log row.
type StatusChange struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BedID     uuid.UUID `db:"bed_id" json:"bed_id"`
	OldStatus string    `db:"old_status" json:"old_status"`
	NewStatus string    `db:"new_status" json:"new_status"`
	ChangedBy string    `db:"changed_by" json:"changed_by"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}

// TurnoverRecord is written when a bed completes cleaning and returns to
// service.
type TurnoverRecord struct {
	ID              uuid.UUID `db:"id" json:"id"`
	BedID           uuid.UUID `db:"bed_id" json:"bed_id"`
	Unit            string    `db:"unit" json:"unit"`
	DurationMinutes float64   `db:"duration_minutes" json:"duration_minutes"`
	TargetMinutes   float64   `db:"target_minutes" json:"target_minutes"`
	ExceededTarget  bool      `db:"exceeded_target" json:"exceeded_target"`
	CompletedAt     time.Time `db:"completed_at" json:"completed_at"`
}

// CleaningTask is one entry in the prioritized cleaning queue.
type CleaningTask struct {
	Bed           *BedState `json:"bed"`
	WaitMinutes   float64   `json:"wait_minutes"`
	TargetMinutes float64   `json:"target_minutes"`
	UrgencyScore  float64   `json:"urgency_score"`
	Action        string    `json:"action"`
}

// Stats holds turnover duration aggregates.
type Stats struct {
	Count          int     `json:"count"`
	AverageMinutes float64 `json:"average_minutes"`
	MedianMinutes  float64 `json:"median_minutes"`
	MinMinutes     float64 `json:"min_minutes"`
	MaxMinutes     float64 `json:"max_minutes"`
	ExceededRate   float64 `json:"exceeded_rate"`
}

// Metrics reports turnover performance per unit and overall.
type Metrics struct {
	WindowStart time.Time         `json:"window_start"`
	Overall     *Stats            `json:"overall"`
	PerUnit     map[string]*Stats `json:"per_unit"`
}
