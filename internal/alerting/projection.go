package alerting

import (
	"sort"
	"time"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
)

type AlertKind string

const (
	KindPmDue              AlertKind = "PM_DUE"
	KindAmcExpiring        AlertKind = "AMC_EXPIRING"
	KindWarrantyExpiring   AlertKind = "WARRANTY_EXPIRING"
	KindComplianceExpiring AlertKind = "COMPLIANCE_EXPIRING"
)

type AlertItem struct {
	Kind      AlertKind                   `json:"kind"`
	Asset     entities.AssetRef           `json:"asset"`
	Status    constants.OperationalStatus `json:"operational_status"`
	Date      time.Time                   `json:"date"`
	DaysUntil int                         `json:"days_until"`
	Severity  Severity                    `json:"severity"`
}

type Alerts struct {
	BranchID           string                  `json:"branch_id"`
	WithinDays         int                     `json:"within_days"`
	EvaluatedAt        time.Time               `json:"evaluated_at"`
	PmDue              []AlertItem             `json:"pm_due"`
	AmcExpiring        []AlertItem             `json:"amc_expiring"`
	WarrantyExpiring   []AlertItem             `json:"warranty_expiring"`
	ComplianceExpiring []AlertItem             `json:"compliance_expiring"`
	OpenDowntime       []entities.OpenDowntime `json:"open_downtime"`
}

type Summary struct {
	BranchID                string                              `json:"branch_id"`
	Total                   int                                 `json:"total"`
	ByStatus                map[constants.OperationalStatus]int `json:"by_status"`
	ByCategory              map[constants.EquipmentCategory]int `json:"by_category"`
	OpenDowntimeCount       int                                 `json:"open_downtime_count"`
	PmDueCount              int                                 `json:"pm_due_count"`
	AmcExpiringCount        int                                 `json:"amc_expiring_count"`
	WarrantyExpiringCount   int                                 `json:"warranty_expiring_count"`
	ComplianceExpiringCount int                                 `json:"compliance_expiring_count"`
	WindowDays              int                                 `json:"window_days"`
	EvaluatedAt             time.Time                           `json:"evaluated_at"`
}

// Projector строит списки предупреждений и сводку из среза филиала.
// Ничего не пишет и не хранит.
type Projector struct {
	policy Policy
}

func NewProjector(policy Policy) *Projector {
	return &Projector{policy: policy.withDefaults()}
}

func (p *Projector) Policy() Policy { return p.policy }

type dateOf func(a *entities.EquipmentAsset) *time.Time

func (p *Projector) collect(kind AlertKind, assets []entities.EquipmentAsset, now time.Time, withinDays int, date dateOf) []AlertItem {
	items := make([]AlertItem, 0)
	for i := range assets {
		a := &assets[i]
		d := date(a)
		days, ok := within(d, now, withinDays)
		if !ok {
			continue
		}
		items = append(items, AlertItem{
			Kind:      kind,
			Asset:     a.Ref(),
			Status:    a.OperationalStatus,
			Date:      *d,
			DaysUntil: days,
			Severity:  p.policy.Tiers.Classify(&days),
		})
	}
	sortItems(items)
	if len(items) > p.policy.ListLimit {
		items = items[:p.policy.ListLimit]
	}
	return items
}

func (p *Projector) PmDue(assets []entities.EquipmentAsset, now time.Time, withinDays int) []AlertItem {
	return p.collect(KindPmDue, assets, now, withinDays, func(a *entities.EquipmentAsset) *time.Time { return a.NextPmDueAt })
}

func (p *Projector) AmcExpiring(assets []entities.EquipmentAsset, now time.Time, withinDays int) []AlertItem {
	return p.collect(KindAmcExpiring, assets, now, withinDays, func(a *entities.EquipmentAsset) *time.Time { return a.AmcValidTo })
}

func (p *Projector) WarrantyExpiring(assets []entities.EquipmentAsset, now time.Time, withinDays int) []AlertItem {
	return p.collect(KindWarrantyExpiring, assets, now, withinDays, func(a *entities.EquipmentAsset) *time.Time { return a.WarrantyValidTo })
}

// ComplianceExpiring смотрит только на срок своей категории; у GENERAL его нет.
func (p *Projector) ComplianceExpiring(assets []entities.EquipmentAsset, now time.Time, withinDays int) []AlertItem {
	return p.collect(KindComplianceExpiring, assets, now, withinDays, complianceValidTo)
}

// OpenDowntime - открытые тикеты, новые первыми.
func (p *Projector) OpenDowntime(open []entities.OpenDowntime) []entities.OpenDowntime {
	out := make([]entities.OpenDowntime, 0, len(open))
	for _, o := range open {
		if o.Ticket.IsOpen() {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ticket.OpenedAt.After(out[j].Ticket.OpenedAt)
	})
	if len(out) > p.policy.ListLimit {
		out = out[:p.policy.ListLimit]
	}
	return out
}

// Alerts собирает все списки для окна withinDays (nil - окно по умолчанию).
func (p *Projector) Alerts(snap entities.BranchSnapshot, now time.Time, withinDays *int) Alerts {
	w := p.policy.ClampWindow(withinDays)
	return Alerts{
		BranchID:           snap.BranchID,
		WithinDays:         w,
		EvaluatedAt:        now,
		PmDue:              p.PmDue(snap.Assets, now, w),
		AmcExpiring:        p.AmcExpiring(snap.Assets, now, w),
		WarrantyExpiring:   p.WarrantyExpiring(snap.Assets, now, w),
		ComplianceExpiring: p.ComplianceExpiring(snap.Assets, now, w),
		OpenDowntime:       p.OpenDowntime(snap.OpenTickets),
	}
}

func (p *Projector) Summary(snap entities.BranchSnapshot, now time.Time) Summary {
	w := p.policy.SummaryWindowDays
	s := Summary{
		BranchID:    snap.BranchID,
		Total:       len(snap.Assets),
		ByStatus:    make(map[constants.OperationalStatus]int, len(constants.OperationalStatuses)),
		ByCategory:  make(map[constants.EquipmentCategory]int, len(constants.EquipmentCategories)),
		WindowDays:  w,
		EvaluatedAt: now,
	}
	for _, st := range constants.OperationalStatuses {
		s.ByStatus[st] = 0
	}
	for _, c := range constants.EquipmentCategories {
		s.ByCategory[c] = 0
	}

	for i := range snap.Assets {
		a := &snap.Assets[i]
		s.ByStatus[a.OperationalStatus]++
		s.ByCategory[a.Category()]++

		if _, ok := within(a.NextPmDueAt, now, 0); ok {
			s.PmDueCount++
		}
		if _, ok := within(a.AmcValidTo, now, w); ok {
			s.AmcExpiringCount++
		}
		if _, ok := within(a.WarrantyValidTo, now, w); ok {
			s.WarrantyExpiringCount++
		}
		if _, ok := within(complianceValidTo(a), now, w); ok {
			s.ComplianceExpiringCount++
		}
	}
	for _, o := range snap.OpenTickets {
		if o.Ticket.IsOpen() {
			s.OpenDowntimeCount++
		}
	}
	return s
}

func complianceValidTo(a *entities.EquipmentAsset) *time.Time {
	if a.Compliance == nil {
		return nil
	}
	return a.Compliance.ValidTo()
}

// sortItems: сначала более срочные, затем меньше дней, затем по коду.
func sortItems(items []AlertItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Severity.Rank(), items[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		if items[i].DaysUntil != items[j].DaysUntil {
			return items[i].DaysUntil < items[j].DaysUntil
		}
		return items[i].Asset.Code < items[j].Asset.Code
	})
}
