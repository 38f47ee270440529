package capacity

import (
	"testing"
	"time"
)

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestProjectPoints_CheckpointCount(t *testing.T) {
	occ := &Occupancy{Unit: "ICU", Capacity: 10, Occupied: 8}
	for horizon, want := range map[int]int{24: 4, 48: 8, 72: 12} {
		points := projectPoints(occ, nil, 0, 0, horizon, noon)
		if len(points) != want {
			t.Errorf("horizon %dh: expected %d checkpoints, got %d", horizon, want, len(points))
		}
	}
}

func TestProjectPoints_DischargesAndAdmissions(t *testing.T) {
	occ := &Occupancy{Unit: "ICU", Capacity: 10, Occupied: 8}
	discharges := []time.Time{
		noon.Add(5 * time.Hour),  // by the 6h checkpoint
		noon.Add(10 * time.Hour), // by the 12h checkpoint
	}
	// 4 admissions expected over 24h: linear share of 1 per 6h point.
	points := projectPoints(occ, discharges, 4, 30, 24, noon)

	// 6h: 8 - 1 + 1 = 8; 12h: 8 - 2 + 2 = 8; 18h: 8 - 2 + 3 = 9; 24h: 8 - 2 + 4 = 10.
	want := []int{8, 8, 9, 10}
	for i, p := range points {
		if p.ProjectedOccupied != want[i] {
			t.Errorf("checkpoint %dh: projected %d, want %d", p.HoursAhead, p.ProjectedOccupied, want[i])
		}
	}
	if points[3].OccupancyRate != 1.0 {
		t.Errorf("full unit should report occupancy 1.0, got %.2f", points[3].OccupancyRate)
	}
}

func TestProjectPoints_NeverNegative(t *testing.T) {
	occ := &Occupancy{Unit: "ICU", Capacity: 10, Occupied: 1}
	discharges := []time.Time{noon.Add(time.Hour), noon.Add(2 * time.Hour), noon.Add(3 * time.Hour)}

	points := projectPoints(occ, discharges, 0, 0, 24, noon)
	for _, p := range points {
		if p.ProjectedOccupied < 0 {
			t.Errorf("projection must clamp at zero, got %d at %dh", p.ProjectedOccupied, p.HoursAhead)
		}
	}
}

func TestPointConfidence(t *testing.T) {
	cases := []struct {
		history  int
		fraction float64
		want     string
	}{
		{30, 0.25, "high"},
		{20, 0.5, "high"},
		{30, 0.75, "medium"},
		{10, 0.5, "medium"},
		{10, 1.0, "low"},
		{2, 0.25, "low"},
	}
	for _, tc := range cases {
		if got := pointConfidence(tc.history, tc.fraction); got != tc.want {
			t.Errorf("pointConfidence(%d, %.2f) = %s, want %s", tc.history, tc.fraction, got, tc.want)
		}
	}
}

func censusSeries(start time.Time, days int, rate func(i int) float64) []*DailyCensus {
	out := make([]*DailyCensus, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, &DailyCensus{Date: start.AddDate(0, 0, i), Rate: rate(i)})
	}
	return out
}

func TestAnalyzeSeasonal_Trend(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	increasing := censusSeries(start, 60, func(i int) float64 {
		if i < 30 {
			return 0.5
		}
		return 0.7
	})
	if got := analyzeSeasonal(increasing, 2).Trend; got != "increasing" {
		t.Errorf("expected increasing, got %s", got)
	}

	decreasing := censusSeries(start, 60, func(i int) float64 {
		if i < 30 {
			return 0.8
		}
		return 0.5
	})
	if got := analyzeSeasonal(decreasing, 2).Trend; got != "decreasing" {
		t.Errorf("expected decreasing, got %s", got)
	}

	stable := censusSeries(start, 60, func(i int) float64 { return 0.7 })
	if got := analyzeSeasonal(stable, 2).Trend; got != "stable" {
		t.Errorf("expected stable, got %s", got)
	}
}

func TestAnalyzeSeasonal_WithinThresholdIsStable(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// 8% growth sits inside the ±10% band.
	history := censusSeries(start, 60, func(i int) float64 {
		if i < 30 {
			return 0.50
		}
		return 0.54
	})
	if got := analyzeSeasonal(history, 2).Trend; got != "stable" {
		t.Errorf("8%% growth should classify stable, got %s", got)
	}
}

func TestAnalyzeSeasonal_MonthPatterns(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := censusSeries(start, 31, func(i int) float64 {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == time.Monday {
			return 0.9
		}
		return 0.6
	})

	analysis := analyzeSeasonal(history, 1)
	if len(analysis.Patterns) != 1 {
		t.Fatalf("expected one month, got %d", len(analysis.Patterns))
	}
	p := analysis.Patterns[0]
	if p.Month != time.January {
		t.Errorf("expected January, got %s", p.Month)
	}
	if len(p.BusiestWeekdays) != 3 || p.BusiestWeekdays[0] != "Monday" {
		t.Errorf("Monday should top the busy list, got %v", p.BusiestWeekdays)
	}
	if len(p.QuietestWeekdays) != 3 {
		t.Errorf("expected 3 quietest weekdays, got %v", p.QuietestWeekdays)
	}
}

func TestAnalyzeSeasonal_EmptyHistory(t *testing.T) {
	analysis := analyzeSeasonal(nil, 6)
	if analysis.Trend != "stable" {
		t.Errorf("empty history should default stable, got %s", analysis.Trend)
	}
	if len(analysis.Patterns) != 0 {
		t.Errorf("expected no patterns, got %d", len(analysis.Patterns))
	}
}

func TestRatiosFor(t *testing.T) {
	icu := ratiosFor("ICU")
	def := ratiosFor("Med-Surg")
	if icu.Nurse >= def.Nurse {
		t.Error("ICU nurse ratio must be the tightest")
	}
}
