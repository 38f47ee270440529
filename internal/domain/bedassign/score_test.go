package bedassign

import (
	"testing"

	"github.com/google/uuid"
)

func cleanBed() *Bed {
	return &Bed{
		ID:             uuid.New(),
		RoomNumber:     "101",
		BedNumber:      "A",
		Unit:           "Med-Surg",
		Status:         "available",
		CleaningStatus: "clean",
	}
}

func TestPassesFilters_IsolationExactness(t *testing.T) {
	contact := "contact"
	droplet := "droplet"
	req := &Requirements{IsolationRequired: true, IsolationType: &contact}

	match := cleanBed()
	match.IsolationCapable = true
	match.IsolationType = &contact
	if !passesFilters(match, req) {
		t.Error("exact isolation match must pass")
	}

	wrongType := cleanBed()
	wrongType.IsolationCapable = true
	wrongType.IsolationType = &droplet
	if passesFilters(wrongType, req) {
		t.Error("cross-category isolation must not pass")
	}

	notCapable := cleanBed()
	if passesFilters(notCapable, req) {
		t.Error("non-isolation bed must not pass when isolation is required")
	}
}

func TestPassesFilters_UnrequiredConstraintsIgnored(t *testing.T) {
	bed := cleanBed()
	req := &Requirements{}
	if !passesFilters(bed, req) {
		t.Error("bed missing un-required capabilities must still be a candidate")
	}
}

func TestPassesFilters_OnlyAvailableBeds(t *testing.T) {
	bed := cleanBed()
	bed.Status = "occupied"
	if passesFilters(bed, &Requirements{}) {
		t.Error("non-available bed must never be a candidate")
	}
}

func TestScoreBed_NoRequirementsFullCredit(t *testing.T) {
	rec := scoreBed(cleanBed(), &Requirements{})
	if rec.Score != 100 {
		t.Errorf("plain bed against no requirements should score 100, got %.1f", rec.Score)
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings)
	}
	if rec.Confidence != "high" {
		t.Errorf("expected high confidence, got %s", rec.Confidence)
	}
}

func TestScoreBed_MonotonicOnSatisfiedCriteria(t *testing.T) {
	req := &Requirements{TelemetryRequired: true, OxygenRequired: true}

	without := cleanBed()
	without.HasOxygen = true

	with := cleanBed()
	with.HasOxygen = true
	with.HasTelemetry = true

	lo := scoreBed(without, req)
	hi := scoreBed(with, req)
	if hi.Score <= lo.Score {
		t.Errorf("satisfying one more required criterion must raise the score: %.1f vs %.1f", hi.Score, lo.Score)
	}
	if len(lo.Warnings) == 0 {
		t.Error("unmet required telemetry must produce a warning")
	}
	if len(hi.Warnings) != 0 {
		t.Errorf("fully satisfied bed should carry no warnings, got %v", hi.Warnings)
	}
}

func TestScoreBed_ScarceCapabilityPartialCredit(t *testing.T) {
	req := &Requirements{}

	plain := scoreBed(cleanBed(), req)

	isoBed := cleanBed()
	isoBed.IsolationCapable = true
	iso := scoreBed(isoBed, req)

	if iso.Score >= plain.Score {
		t.Errorf("isolation-capable bed should score below a plain bed for a non-isolation patient: %.1f vs %.1f",
			iso.Score, plain.Score)
	}
}

func TestScoreBed_StaffRatioDegrades(t *testing.T) {
	busy := cleanBed()
	busy.UnitStaffRatio = 8

	calm := cleanBed()
	calm.UnitStaffRatio = 3

	if scoreBed(busy, &Requirements{}).Score >= scoreBed(calm, &Requirements{}).Score {
		t.Error("a stretched unit must score below a well-staffed one")
	}
}

func TestScoreBed_CleaningStatus(t *testing.T) {
	dirty := cleanBed()
	dirty.CleaningStatus = "dirty"
	rec := scoreBed(dirty, &Requirements{})
	if len(rec.Warnings) == 0 {
		t.Error("dirty bed must carry a warning")
	}

	inProgress := cleanBed()
	inProgress.CleaningStatus = "in_progress"
	if scoreBed(inProgress, &Requirements{}).Score >= scoreBed(cleanBed(), &Requirements{}).Score {
		t.Error("in-progress cleaning must score below clean")
	}
}

func TestConfidenceTier(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "high"},
		{80, "high"},
		{79.9, "medium"},
		{60, "medium"},
		{59.9, "low"},
		{0, "low"},
	}
	for _, tc := range cases {
		if got := confidenceTier(tc.score); got != tc.want {
			t.Errorf("confidenceTier(%.1f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
