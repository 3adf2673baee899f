package alerting

type Policy struct {
	Tiers             Tiers
	SummaryWindowDays int
	DefaultWithinDays int
	MaxWithinDays     int
	ListLimit         int
}

func DefaultPolicy() Policy {
	return Policy{
		Tiers:             DefaultTiers(),
		SummaryWindowDays: 30,
		DefaultWithinDays: 30,
		MaxWithinDays:     365,
		ListLimit:         200,
	}
}

// withDefaults заполняет нулевые поля значениями по умолчанию.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Tiers.HighWithinDays <= 0 && p.Tiers.ElevatedWithinDays <= 0 {
		p.Tiers = def.Tiers
	}
	if p.SummaryWindowDays <= 0 {
		p.SummaryWindowDays = def.SummaryWindowDays
	}
	if p.DefaultWithinDays <= 0 {
		p.DefaultWithinDays = def.DefaultWithinDays
	}
	if p.MaxWithinDays <= 0 {
		p.MaxWithinDays = def.MaxWithinDays
	}
	if p.ListLimit <= 0 {
		p.ListLimit = def.ListLimit
	}
	return p
}

// ClampWindow приводит запрошенное окно к [0, MaxWithinDays]; nil - окно по умолчанию.
func (p Policy) ClampWindow(withinDays *int) int {
	if withinDays == nil {
		return p.DefaultWithinDays
	}
	v := *withinDays
	if v < 0 {
		return 0
	}
	if v > p.MaxWithinDays {
		return p.MaxWithinDays
	}
	return v
}
