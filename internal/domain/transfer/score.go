package transfer

import "fmt"

// waitTargets is the boarding-time SLA in hours per ESI acuity level.
// Acuity 1 is the sickest.
var waitTargets = map[int]float64{
	1: 1,
	2: 2,
	3: 4,
	4: 6,
	5: 8,
}

// priorityWeights caps the components of a transfer score.
var priorityWeights = struct {
	AcuityBase     float64
	AcuityPerLevel float64
	AcuityMin      float64
	AcuityMax      float64
	WaitMax        float64
	WaitScale      float64
	IsolationBonus float64
}{
	AcuityBase:     60,
	AcuityPerLevel: 10,
	AcuityMin:      10,
	AcuityMax:      50,
	WaitMax:        30,
	WaitScale:      15,
	IsolationBonus: 20,
}

// availabilityCheckpoints are the fixed forecast buckets, in hours.
var availabilityCheckpoints = []int{1, 2, 4, 8}

// acuityCheckpoint selects the forecast bucket a patient of the given
// acuity can reasonably wait for.
func acuityCheckpoint(acuity int) int {
	switch acuity {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 4
	default:
		return 8
	}
}

func scoreTransfer(p *EDPatient, waitHours float64) float64 {
	acuity := priorityWeights.AcuityBase - float64(p.Acuity)*priorityWeights.AcuityPerLevel
	if acuity < priorityWeights.AcuityMin {
		acuity = priorityWeights.AcuityMin
	}
	if acuity > priorityWeights.AcuityMax {
		acuity = priorityWeights.AcuityMax
	}

	target := waitTargets[p.Acuity]
	if target <= 0 {
		target = waitTargets[5]
	}
	wait := (waitHours / target) * priorityWeights.WaitScale
	if wait > priorityWeights.WaitMax {
		wait = priorityWeights.WaitMax
	}

	score := acuity + wait
	if p.IsolationRequired {
		score += priorityWeights.IsolationBonus
	}
	return score
}

func priorityTier(score float64) string {
	switch {
	case score >= 80:
		return "urgent"
	case score >= 60:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func timingReasoning(p *Priority, tier string) string {
	base := fmt.Sprintf("acuity %d patient boarding %.1f hours against a %.0f-hour target",
		p.Acuity, p.WaitHours, waitTargets[p.Acuity])
	if p.IsolationRequired {
		base += ", isolation precautions required"
	}
	switch tier {
	case "urgent":
		return "Immediate transfer recommended: " + base
	case "high":
		return "Expedite transfer: " + base
	case "medium":
		return "Transfer when a bed opens: " + base
	default:
		return "Routine transfer: " + base
	}
}

func forecastConfidence(finalBucket int) string {
	switch {
	case finalBucket >= 3:
		return "high"
	case finalBucket >= 1:
		return "medium"
	default:
		return "low"
	}
}
