package discharge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Barrier categories. Each maps 1:1 to a deduction rule and to an
// intervention in the catalog below.
const (
	CategoryUnstableVitals = "unstable_vitals"
	CategoryPendingLabs    = "pending_labs"
	CategoryMonitoredMeds  = "monitored_medications"
	CategoryMobility       = "mobility"
	CategoryPain           = "pain_management"
	CategoryNoDestination  = "no_destination"
	CategorySNFPlacement   = "snf_placement"
	CategoryHomeHealth     = "home_health"
	CategoryTransport      = "transportation"
	CategoryMedRec         = "medication_reconciliation"
	CategoryEducation      = "patient_education"
	CategoryFollowUp       = "follow_up"
)

// medicalDeductions and socialDeductions are the point tables applied to
// a 100-point baseline per dimension.
var medicalDeductions = struct {
	UnstableVitals   float64
	PendingLabEach   float64
	PendingLabCap    float64
	MonitoredMedEach float64
	MonitoredMedCap  float64
	Bedbound         float64
	Wheelchair       float64
	SeverePain       float64
}{
	UnstableVitals:   30,
	PendingLabEach:   5,
	PendingLabCap:    20,
	MonitoredMedEach: 10,
	MonitoredMedCap:  30,
	Bedbound:         20,
	Wheelchair:       10,
	SeverePain:       15,
}

var socialDeductions = struct {
	NoDestination        float64
	SNFUnarranged        float64
	HomeHealthUnarranged float64
	TransportUnarranged  float64
	MedRecIncomplete     float64
	EducationIncomplete  float64
	NoFollowUp           float64
}{
	NoDestination:        40,
	SNFUnarranged:        30,
	HomeHealthUnarranged: 25,
	TransportUnarranged:  15,
	MedRecIncomplete:     20,
	EducationIncomplete:  15,
	NoFollowUp:           10,
}

// severePainThreshold is the 0-10 pain level above which discharge is
// deferred.
const severePainThreshold = 7

// requiredEducationItems is the minimum count of completed education
// items before the education deduction stops applying.
const requiredEducationItems = 2

// barrierDelays maps category to the delay each open barrier adds to the
// predicted discharge date, in hours.
var barrierDelays = map[string]int{
	CategoryUnstableVitals: 24,
	CategoryPendingLabs:    6,
	CategoryMonitoredMeds:  12,
	CategoryMobility:       24,
	CategoryPain:           12,
	CategoryNoDestination:  48,
	CategorySNFPlacement:   48,
	CategoryHomeHealth:     24,
	CategoryTransport:      4,
	CategoryMedRec:         8,
	CategoryEducation:      6,
	CategoryFollowUp:       4,
}

// interventionCatalog maps each barrier category to the role that owns
// its resolution.
var interventionCatalog = map[string]Intervention{
	CategoryUnstableVitals: {Role: "physician", Priority: "high", Description: "Reassess and stabilize abnormal vital signs"},
	CategoryPendingLabs:    {Role: "lab", Priority: "medium", Description: "Expedite outstanding lab results"},
	CategoryMonitoredMeds:  {Role: "pharmacist", Priority: "medium", Description: "Review monitored medications for discharge conversion"},
	CategoryMobility:       {Role: "physical_therapist", Priority: "medium", Description: "Mobility evaluation and equipment planning"},
	CategoryPain:           {Role: "physician", Priority: "medium", Description: "Adjust pain management plan"},
	CategoryNoDestination:  {Role: "case_manager", Priority: "high", Description: "Establish a discharge destination with the patient and family"},
	CategorySNFPlacement:   {Role: "case_manager", Priority: "high", Description: "Secure skilled nursing facility placement"},
	CategoryHomeHealth:     {Role: "case_manager", Priority: "medium", Description: "Arrange home health services"},
	CategoryTransport:      {Role: "social_worker", Priority: "low", Description: "Arrange discharge transportation"},
	CategoryMedRec:         {Role: "pharmacist", Priority: "high", Description: "Complete medication reconciliation"},
	CategoryEducation:      {Role: "nurse", Priority: "medium", Description: "Complete discharge education with the patient"},
	CategoryFollowUp:       {Role: "scheduler", Priority: "low", Description: "Schedule the follow-up appointment"},
}

// dischargeBands maps overall score to the base hours until discharge.
var dischargeBands = []struct {
	MinScore float64
	Hours    int
}{
	{90, 6},
	{80, 12},
	{70, 24},
	{60, 48},
	{0, 72},
}

func bandHours(score float64) int {
	for _, b := range dischargeBands {
		if score >= b.MinScore {
			return b.Hours
		}
	}
	return dischargeBands[len(dischargeBands)-1].Hours
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func severityFor(points float64) string {
	switch {
	case points >= 30:
		return "high"
	case points >= 15:
		return "medium"
	default:
		return "low"
	}
}

type deduction struct {
	category    string
	points      float64
	description string
}

// medicalScore applies the medical deduction table. Resolved categories
// are skipped, which is how a resolved barrier stops depressing the
// score without waiting for the chart to catch up.
func medicalScore(snap *ClinicalSnapshot, resolved map[string]bool) (float64, []deduction) {
	var deds []deduction
	apply := func(category string, points float64, description string) {
		if resolved[category] || points <= 0 {
			return
		}
		deds = append(deds, deduction{category: category, points: points, description: description})
	}

	if snap.UnstableVitals24h {
		apply(CategoryUnstableVitals, medicalDeductions.UnstableVitals, "unstable vital signs in the last 24 hours")
	}
	if snap.PendingLabCount > 0 {
		points := medicalDeductions.PendingLabEach * float64(snap.PendingLabCount)
		if points > medicalDeductions.PendingLabCap {
			points = medicalDeductions.PendingLabCap
		}
		apply(CategoryPendingLabs, points, fmt.Sprintf("%d pending lab result(s)", snap.PendingLabCount))
	}
	if snap.MonitoredMedCount > 0 {
		points := medicalDeductions.MonitoredMedEach * float64(snap.MonitoredMedCount)
		if points > medicalDeductions.MonitoredMedCap {
			points = medicalDeductions.MonitoredMedCap
		}
		apply(CategoryMonitoredMeds, points, fmt.Sprintf("%d medication(s) requiring monitoring", snap.MonitoredMedCount))
	}
	switch snap.Mobility {
	case MobilityBedbound:
		apply(CategoryMobility, medicalDeductions.Bedbound, "patient is bedbound")
	case MobilityWheelchair:
		apply(CategoryMobility, medicalDeductions.Wheelchair, "patient requires a wheelchair")
	}
	if snap.PainLevel > severePainThreshold {
		apply(CategoryPain, medicalDeductions.SeverePain, fmt.Sprintf("pain level %d/10", snap.PainLevel))
	}

	score := 100.0
	for _, d := range deds {
		score -= d.points
	}
	return clampScore(score), deds
}

func socialScore(snap *ClinicalSnapshot, resolved map[string]bool) (float64, []deduction) {
	var deds []deduction
	apply := func(category string, points float64, description string) {
		if resolved[category] {
			return
		}
		deds = append(deds, deduction{category: category, points: points, description: description})
	}

	switch {
	case snap.Destination == nil || *snap.Destination == "":
		apply(CategoryNoDestination, socialDeductions.NoDestination, "no discharge destination identified")
	case *snap.Destination == "snf" && !snap.PlacementArranged:
		apply(CategorySNFPlacement, socialDeductions.SNFUnarranged, "skilled nursing facility placement not arranged")
	case *snap.Destination == "home_health" && !snap.HomeHealthArranged:
		apply(CategoryHomeHealth, socialDeductions.HomeHealthUnarranged, "home health services not arranged")
	}
	if !snap.TransportArranged {
		apply(CategoryTransport, socialDeductions.TransportUnarranged, "discharge transportation not arranged")
	}
	if !snap.MedRecComplete {
		apply(CategoryMedRec, socialDeductions.MedRecIncomplete, "medication reconciliation incomplete")
	}
	if snap.EducationCompleted < requiredEducationItems {
		apply(CategoryEducation, socialDeductions.EducationIncomplete,
			fmt.Sprintf("only %d of %d education items completed", snap.EducationCompleted, requiredEducationItems))
	}
	if !snap.FollowUpScheduled {
		apply(CategoryFollowUp, socialDeductions.NoFollowUp, "no follow-up appointment scheduled")
	}

	score := 100.0
	for _, d := range deds {
		score -= d.points
	}
	return clampScore(score), deds
}

// compute runs the full scoring pipeline over one snapshot.
func compute(snap *ClinicalSnapshot, resolved map[string]bool, now time.Time) *Prediction {
	medical, medDeds := medicalScore(snap, resolved)
	social, socDeds := socialScore(snap, resolved)
	overall := clampScore(0.6*medical + 0.4*social)

	deds := append(medDeds, socDeds...)
	barriers := make([]*Barrier, 0, len(deds))
	interventions := make([]*Intervention, 0, len(deds))
	totalDelay := 0
	for _, d := range deds {
		barriers = append(barriers, &Barrier{
			ID:                  uuid.New(),
			Category:            d.category,
			Description:         d.description,
			Severity:            severityFor(d.points),
			EstimatedDelayHours: barrierDelays[d.category],
		})
		totalDelay += barrierDelays[d.category]

		iv := interventionCatalog[d.category]
		iv.BarrierCategory = d.category
		interventions = append(interventions, &iv)
	}

	return &Prediction{
		AdmissionID:            snap.AdmissionID,
		PatientID:              snap.PatientID,
		Unit:                   snap.Unit,
		MedicalScore:           medical,
		SocialScore:            social,
		OverallScore:           overall,
		PredictedDischargeDate: now.Add(time.Duration(bandHours(overall)+totalDelay) * time.Hour),
		Confidence:             predictionConfidence(overall, len(barriers)),
		Barriers:               barriers,
		Interventions:          interventions,
		ComputedAt:             now,
	}
}

func predictionConfidence(score float64, barrierCount int) string {
	switch {
	case score >= 80 && barrierCount == 0:
		return "high"
	case score >= 60 && barrierCount <= 2:
		return "medium"
	default:
		return "low"
	}
}
