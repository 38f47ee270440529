package capacity

import (
	"time"

	"github.com/google/uuid"
)

// FeatureName gates every forecasting operation.
const FeatureName = "capacity_forecasting"

// Occupancy is the current census of one unit.
type Occupancy struct {
	UnitID   uuid.UUID `db:"unit_id" json:"unit_id"`
	Unit     string    `db:"unit" json:"unit"`
	Capacity int       `db:"capacity" json:"capacity"`
	Occupied int       `db:"occupied" json:"occupied"`
}

func (o *Occupancy) Rate() float64 {
	if o.Capacity == 0 {
		return 0
	}
	return float64(o.Occupied) / float64(o.Capacity)
}

// ForecastPoint is the projected census at one 6-hour checkpoint.
type ForecastPoint struct {
	HoursAhead          int       `json:"hours_ahead"`
	At                  time.Time `json:"at"`
	ProjectedOccupied   int       `json:"projected_occupied"`
	OccupancyRate       float64   `json:"occupancy_rate"`
	ScheduledDischarges int       `json:"scheduled_discharges"`
	ExpectedAdmissions  int       `json:"expected_admissions"`
	Confidence          string    `json:"confidence"`
}

// Forecast is the capacity projection for one unit over a horizon.
type Forecast struct {
	Unit            string           `json:"unit"`
	HorizonHours    int              `json:"horizon_hours"`
	Capacity        int              `json:"capacity"`
	CurrentOccupied int              `json:"current_occupied"`
	Points          []*ForecastPoint `json:"points"`
	ComputedAt      time.Time        `json:"computed_at"`
}

// DailyCensus is one day's occupancy rate, the raw material for seasonal
// analysis.
type DailyCensus struct {
	Date time.Time `db:"date" json:"date"`
	Rate float64   `db:"rate" json:"rate"`
}

// MonthPattern aggregates occupancy for one calendar month.
type MonthPattern struct {
	Month            time.Month `json:"month"`
	AverageOccupancy float64    `json:"average_occupancy"`
	BusiestWeekdays  []string   `json:"busiest_weekdays"`
	QuietestWeekdays []string   `json:"quietest_weekdays"`
}

// SeasonalAnalysis is the month-by-month occupancy summary with an
// overall trend.
type SeasonalAnalysis struct {
	Months   int             `json:"months"`
	Patterns []*MonthPattern `json:"patterns"`
	Trend    string          `json:"trend"`
}

// ShiftStaffing is the recommended headcount for one shift.
type ShiftStaffing struct {
	Shift          string  `json:"shift"`
	ExpectedCensus float64 `json:"expected_census"`
	Nurses         int     `json:"nurses"`
	Doctors        int     `json:"doctors"`
	Support        int     `json:"support"`
}

// StaffingPlan covers one unit for one day.
type StaffingPlan struct {
	Unit   string           `json:"unit"`
	Date   time.Time        `json:"date"`
	Shifts []*ShiftStaffing `json:"shifts"`
}

// SurgeAssessment is the surge-capacity evaluation for one unit.
type SurgeAssessment struct {
	Unit            string   `json:"unit"`
	Capacity        int      `json:"capacity"`
	Occupied        int      `json:"occupied"`
	OccupancyRate   float64  `json:"occupancy_rate"`
	Tier            string   `json:"tier"`
	ActivatableBeds int      `json:"activatable_beds"`
	AdditionalStaff int      `json:"additional_staff"`
	Equipment       []string `json:"equipment,omitempty"`
	Recommendation  string   `json:"recommendation"`
}
