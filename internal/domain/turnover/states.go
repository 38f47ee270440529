package turnover

// validTransitions is the bed state machine. Maintenance and reserved are
// reachable only from available; everything released from use passes
// through cleaning before coming back.
var validTransitions = map[string][]string{
	StatusAvailable:   {StatusOccupied, StatusCleaning, StatusMaintenance, StatusReserved},
	StatusOccupied:    {StatusAvailable, StatusCleaning},
	StatusCleaning:    {StatusAvailable},
	StatusMaintenance: {StatusAvailable},
	StatusReserved:    {StatusAvailable, StatusOccupied},
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Turnover targets in minutes: a stat-priority clean is expected back
// fastest, isolation rooms get extra time for terminal cleaning.
const (
	targetStatMinutes      = 30
	targetIsolationMinutes = 90
	targetStandardMinutes  = 60
)

func turnoverTarget(bed *BedState) float64 {
	switch {
	case bed.CleaningPriority == PriorityStat:
		return targetStatMinutes
	case bed.IsolationCapable:
		return targetIsolationMinutes
	default:
		return targetStandardMinutes
	}
}

func validCleaningPriority(p string) bool {
	switch p {
	case PriorityStat, PriorityUrgent, PriorityRoutine:
		return true
	}
	return false
}

// priorityRank orders the cleaning queue's leading key: stat beds first,
// then urgent, then everything else by urgency score.
func priorityRank(bed *BedState) int {
	switch bed.CleaningPriority {
	case PriorityStat:
		return 2
	case PriorityUrgent:
		return 1
	default:
		return 0
	}
}

// Cleaning queue base priority by bed capability: scarce bed types come
// back first.
const (
	basePriorityIsolation = 50
	basePriorityTelemetry = 35
	basePriorityStandard  = 25
)

func cleaningBasePriority(bed *BedState) float64 {
	switch {
	case bed.IsolationCapable:
		return basePriorityIsolation
	case bed.HasTelemetry:
		return basePriorityTelemetry
	default:
		return basePriorityStandard
	}
}

// cleaningAction tiers the queue by elapsed wait against target.
func cleaningAction(waitMinutes, targetMinutes float64) string {
	ratio := waitMinutes / targetMinutes
	switch {
	case ratio > 1.5:
		return "critical"
	case ratio > 1.0:
		return "overdue"
	case ratio > 0.8:
		return "warning"
	default:
		return "normal"
	}
}
