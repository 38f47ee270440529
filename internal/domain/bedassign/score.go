package bedassign

import "fmt"

// maxCandidates bounds how many available beds are scored per request.
const maxCandidates = 20

// scoreWeights is the point budget per criterion. The budget does not
// partition to a strict 100: un-required isolation and telemetry branches
// award partial credit to steer patients away from scarce capable beds,
// so two beds can tie for different clinical reasons.
var scoreWeights = struct {
	Isolation   float64
	Telemetry   float64
	Oxygen      float64
	Unit        float64
	Proximity   float64
	Bariatric   float64
	StaffRatio  float64
	Cleanliness float64
}{
	Isolation:   30,
	Telemetry:   20,
	Oxygen:      15,
	Unit:        15,
	Proximity:   10,
	Bariatric:   10,
	StaffRatio:  5,
	Cleanliness: 5,
}

// idealStaffRatio is the patients-per-nurse ratio that earns full staffing
// credit; busier units earn proportionally less.
const idealStaffRatio = 4.0

// passesFilters applies the hard constraints. Each constraint is enforced
// only when the requirements set it.
func passesFilters(bed *Bed, req *Requirements) bool {
	if bed.Status != "available" {
		return false
	}
	if req.IsolationRequired {
		if !bed.IsolationCapable || bed.IsolationType == nil || req.IsolationType == nil ||
			*bed.IsolationType != *req.IsolationType {
			return false
		}
	}
	if req.TelemetryRequired && !bed.HasTelemetry {
		return false
	}
	if req.OxygenRequired && !bed.HasOxygen {
		return false
	}
	if req.PreferredUnit != nil && bed.Unit != *req.PreferredUnit {
		return false
	}
	if req.BariatricRequired && !bed.Bariatric {
		return false
	}
	return true
}

// scoreBed scores one candidate across the weighted criteria. Unmet
// required criteria contribute 0 and a warning; everything else
// contributes credit and a reason.
func scoreBed(bed *Bed, req *Requirements) *Recommendation {
	rec := &Recommendation{Bed: bed}
	add := func(points float64, reason string) {
		rec.Score += points
		rec.Reasons = append(rec.Reasons, reason)
	}
	warn := func(msg string) {
		rec.Warnings = append(rec.Warnings, msg)
	}

	switch {
	case req.IsolationRequired:
		if bed.IsolationCapable && bed.IsolationType != nil && req.IsolationType != nil &&
			*bed.IsolationType == *req.IsolationType {
			add(scoreWeights.Isolation, fmt.Sprintf("%s isolation room matches requirement", *bed.IsolationType))
		} else {
			warn("bed does not satisfy the required isolation precautions")
		}
	case bed.IsolationCapable:
		add(scoreWeights.Isolation/2, "isolation-capable room held in reserve")
	default:
		add(scoreWeights.Isolation, "no isolation precautions needed")
	}

	switch {
	case req.TelemetryRequired && bed.HasTelemetry:
		add(scoreWeights.Telemetry, "telemetry monitoring available")
	case req.TelemetryRequired:
		warn("required telemetry monitoring is not available")
	case bed.HasTelemetry:
		add(scoreWeights.Telemetry/2, "telemetry bed used for a non-telemetry patient")
	default:
		add(scoreWeights.Telemetry, "telemetry not needed")
	}

	switch {
	case req.OxygenRequired && bed.HasOxygen:
		add(scoreWeights.Oxygen, "oxygen supply at bedside")
	case req.OxygenRequired:
		warn("required oxygen supply is not available")
	default:
		add(scoreWeights.Oxygen, "oxygen not needed")
	}

	switch {
	case req.PreferredUnit != nil && bed.Unit == *req.PreferredUnit:
		add(scoreWeights.Unit, fmt.Sprintf("on preferred unit %s", bed.Unit))
	case req.PreferredUnit != nil:
		warn(fmt.Sprintf("bed is on %s, not the preferred unit %s", bed.Unit, *req.PreferredUnit))
	default:
		add(scoreWeights.Unit, "no unit preference")
	}

	switch {
	case req.NearNursesStation && bed.NearNursesStation:
		add(scoreWeights.Proximity, "close to the nurses station")
	case req.NearNursesStation:
		warn("requested proximity to the nurses station is not met")
	default:
		add(scoreWeights.Proximity, "proximity not requested")
	}

	switch {
	case req.BariatricRequired && bed.Bariatric:
		add(scoreWeights.Bariatric, "bariatric-rated bed")
	case req.BariatricRequired:
		warn("required bariatric equipment is not available")
	default:
		add(scoreWeights.Bariatric, "bariatric equipment not needed")
	}

	switch {
	case bed.UnitStaffRatio <= 0:
		add(scoreWeights.StaffRatio, "unit staffing not reported")
	case bed.UnitStaffRatio <= idealStaffRatio:
		add(scoreWeights.StaffRatio, fmt.Sprintf("unit staffed at %.1f patients per nurse", bed.UnitStaffRatio))
	default:
		add(scoreWeights.StaffRatio*(idealStaffRatio/bed.UnitStaffRatio),
			fmt.Sprintf("unit stretched at %.1f patients per nurse", bed.UnitStaffRatio))
	}

	switch bed.CleaningStatus {
	case "clean":
		add(scoreWeights.Cleanliness, "bed is clean and ready")
	case "in_progress":
		add(scoreWeights.Cleanliness*0.4, "cleaning in progress")
	default:
		warn("bed has not been cleaned")
	}

	rec.Confidence = confidenceTier(rec.Score)
	return rec
}

func confidenceTier(score float64) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}
