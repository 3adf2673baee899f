package alerting

type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityNormal   Severity = "normal"
	SeverityElevated Severity = "elevated"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank - чем больше, тем срочнее.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityElevated:
		return 2
	case SeverityNormal:
		return 1
	default:
		return 0
	}
}

// Tiers - пороги уровней срочности в днях. Это соглашение отображения,
// поэтому пороги настраиваются.
type Tiers struct {
	HighWithinDays     int
	ElevatedWithinDays int
}

func DefaultTiers() Tiers {
	return Tiers{HighWithinDays: 7, ElevatedWithinDays: 30}
}

func (t Tiers) Classify(days *int) Severity {
	switch {
	case days == nil:
		return SeverityNeutral
	case *days <= 0:
		return SeverityCritical
	case *days <= t.HighWithinDays:
		return SeverityHigh
	case *days <= t.ElevatedWithinDays:
		return SeverityElevated
	default:
		return SeverityNormal
	}
}
