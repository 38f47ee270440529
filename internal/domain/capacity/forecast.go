package capacity

import (
	"math"
	"sort"
	"time"
)

// checkpointInterval is the spacing of forecast points.
const checkpointInterval = 6

// validHorizons are the accepted forecast horizons, in hours.
var validHorizons = map[int]bool{24: true, 48: true, 72: true}

// admissionHistoryDays is how far back the admission-rate baseline looks.
const admissionHistoryDays = 7

// surge thresholds by occupancy rate.
const (
	surgeTrigger  = 0.90
	surgeWarning  = 0.80
	surgeStaffPer = 4
)

// shiftMultipliers scale the census forecast per shift.
var shiftMultipliers = []struct {
	Shift      string
	Multiplier float64
}{
	{"day", 1.0},
	{"evening", 0.9},
	{"night", 0.8},
}

// staffRatios is patients-per-staff by unit, tightest for the ICU. Units
// not listed use the default.
type staffRatios struct {
	Nurse   float64
	Doctor  float64
	Support float64
}

var unitStaffRatios = map[string]staffRatios{
	"ICU":      {Nurse: 2, Doctor: 8, Support: 4},
	"Stepdown": {Nurse: 3, Doctor: 10, Support: 6},
	"ED":       {Nurse: 4, Doctor: 8, Support: 6},
}

var defaultStaffRatios = staffRatios{Nurse: 5, Doctor: 15, Support: 8}

func ratiosFor(unit string) staffRatios {
	if r, ok := unitStaffRatios[unit]; ok {
		return r
	}
	return defaultStaffRatios
}

// surgeEquipment lists what a unit needs on hand to activate surge beds.
var surgeEquipment = map[string][]string{
	"ICU":     {"ventilators", "infusion pumps", "cardiac monitors", "crash carts"},
	"ED":      {"stretchers", "cardiac monitors", "portable oxygen"},
	"default": {"beds", "IV poles", "vital sign monitors", "linens"},
}

func equipmentFor(unit string) []string {
	if eq, ok := surgeEquipment[unit]; ok {
		return eq
	}
	return surgeEquipment["default"]
}

// projectPoints builds the checkpoint series. Each point projects the
// census as current occupancy minus discharges scheduled by then plus a
// linear share of the admissions expected over the whole horizon.
func projectPoints(occ *Occupancy, dischargeTimes []time.Time, expectedAdmissions float64,
	historyCount, horizonHours int, now time.Time) []*ForecastPoint {

	var points []*ForecastPoint
	for h := checkpointInterval; h <= horizonHours; h += checkpointInterval {
		at := now.Add(time.Duration(h) * time.Hour)
		discharged := 0
		for _, t := range dischargeTimes {
			if !t.After(at) {
				discharged++
			}
		}

		fraction := float64(h) / float64(horizonHours)
		admitted := int(math.Round(expectedAdmissions * fraction))

		projected := occ.Occupied - discharged + admitted
		if projected < 0 {
			projected = 0
		}

		rate := 0.0
		if occ.Capacity > 0 {
			rate = float64(projected) / float64(occ.Capacity)
		}
		points = append(points, &ForecastPoint{
			HoursAhead:          h,
			At:                  at,
			ProjectedOccupied:   projected,
			OccupancyRate:       rate,
			ScheduledDischarges: discharged,
			ExpectedAdmissions:  admitted,
			Confidence:          pointConfidence(historyCount, fraction),
		})
	}
	return points
}

// pointConfidence rises with history volume and falls with distance: a
// near checkpoint backed by a busy week is trustworthy, the far end of a
// 72-hour horizon over a quiet week is a guess.
func pointConfidence(historyCount int, fraction float64) string {
	switch {
	case historyCount >= 20 && fraction <= 0.5:
		return "high"
	case historyCount >= 5 && fraction <= 0.75:
		return "medium"
	default:
		return "low"
	}
}

// analyzeSeasonal groups daily census rates by calendar month and
// classifies the overall trend at a ±10% half-versus-half threshold.
func analyzeSeasonal(history []*DailyCensus, months int) *SeasonalAnalysis {
	analysis := &SeasonalAnalysis{Months: months}
	if len(history) == 0 {
		analysis.Trend = "stable"
		return analysis
	}

	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	type monthAgg struct {
		sum      float64
		count    int
		weekday  map[time.Weekday]float64
		weekdayN map[time.Weekday]int
	}
	byMonth := make(map[time.Month]*monthAgg)
	for _, d := range history {
		agg := byMonth[d.Date.Month()]
		if agg == nil {
			agg = &monthAgg{
				weekday:  make(map[time.Weekday]float64),
				weekdayN: make(map[time.Weekday]int),
			}
			byMonth[d.Date.Month()] = agg
		}
		agg.sum += d.Rate
		agg.count++
		agg.weekday[d.Date.Weekday()] += d.Rate
		agg.weekdayN[d.Date.Weekday()]++
	}

	for m := time.January; m <= time.December; m++ {
		agg, ok := byMonth[m]
		if !ok {
			continue
		}
		type wd struct {
			day  time.Weekday
			rate float64
		}
		var days []wd
		for day, sum := range agg.weekday {
			days = append(days, wd{day, sum / float64(agg.weekdayN[day])})
		}
		sort.Slice(days, func(i, j int) bool { return days[i].rate > days[j].rate })

		pattern := &MonthPattern{
			Month:            m,
			AverageOccupancy: agg.sum / float64(agg.count),
		}
		for i := 0; i < len(days) && i < 3; i++ {
			pattern.BusiestWeekdays = append(pattern.BusiestWeekdays, days[i].day.String())
		}
		for i := len(days) - 1; i >= 0 && len(pattern.QuietestWeekdays) < 3; i-- {
			pattern.QuietestWeekdays = append(pattern.QuietestWeekdays, days[i].day.String())
		}
		analysis.Patterns = append(analysis.Patterns, pattern)
	}

	analysis.Trend = classifyTrend(history)
	return analysis
}

func classifyTrend(history []*DailyCensus) string {
	if len(history) < 2 {
		return "stable"
	}
	half := len(history) / 2
	firstAvg := averageRate(history[:half])
	secondAvg := averageRate(history[half:])
	if firstAvg == 0 {
		return "stable"
	}
	change := (secondAvg - firstAvg) / firstAvg
	switch {
	case change > 0.10:
		return "increasing"
	case change < -0.10:
		return "decreasing"
	default:
		return "stable"
	}
}

func averageRate(days []*DailyCensus) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range days {
		sum += d.Rate
	}
	return sum / float64(len(days))
}
