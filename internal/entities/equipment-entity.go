package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-register/pkg/constants"
	"equipment-register/pkg/types"
)

type EquipmentAsset struct {
	ID       uuid.UUID `json:"id"`
	BranchID string    `json:"branch_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`

	Make   *string `json:"make"`
	Model  *string `json:"model"`
	Serial *string `json:"serial"`

	OwnerDepartmentID *string `json:"owner_department_id"`
	UnitID            *string `json:"unit_id"`
	RoomID            *string `json:"room_id"`
	LocationNodeID    *string `json:"location_node_id"`

	OperationalStatus constants.OperationalStatus `json:"operational_status"`
	IsSchedulable     bool                        `json:"is_schedulable"`

	AmcVendor       *string    `json:"amc_vendor"`
	AmcValidFrom    *time.Time `json:"amc_valid_from"`
	AmcValidTo      *time.Time `json:"amc_valid_to"`
	WarrantyValidTo *time.Time `json:"warranty_valid_to"`
	PmFrequencyDays *int       `json:"pm_frequency_days"`
	NextPmDueAt     *time.Time `json:"next_pm_due_at"`

	// Категория задается вариантом регуляторных данных.
	Compliance Compliance `json:"-"`

	types.BaseEntity

	// Не колонка: последние тикеты, самые новые первыми
	Tickets []DowntimeTicket `db:"-" json:"-"`
}

func (a *EquipmentAsset) Category() constants.EquipmentCategory {
	if a.Compliance == nil {
		return constants.CategoryGeneral
	}
	return a.Compliance.Category()
}

func (a *EquipmentAsset) IsRetired() bool {
	return a.OperationalStatus == constants.StatusRetired
}

// Clone - глубокая копия без тикетов.
func (a *EquipmentAsset) Clone() *EquipmentAsset {
	c := *a
	c.Make = clonePtr(a.Make)
	c.Model = clonePtr(a.Model)
	c.Serial = clonePtr(a.Serial)
	c.OwnerDepartmentID = clonePtr(a.OwnerDepartmentID)
	c.UnitID = clonePtr(a.UnitID)
	c.RoomID = clonePtr(a.RoomID)
	c.LocationNodeID = clonePtr(a.LocationNodeID)
	c.AmcVendor = clonePtr(a.AmcVendor)
	c.AmcValidFrom = clonePtr(a.AmcValidFrom)
	c.AmcValidTo = clonePtr(a.AmcValidTo)
	c.WarrantyValidTo = clonePtr(a.WarrantyValidTo)
	c.PmFrequencyDays = clonePtr(a.PmFrequencyDays)
	c.NextPmDueAt = clonePtr(a.NextPmDueAt)
	c.CreatedAt = clonePtr(a.CreatedAt)
	c.UpdatedAt = clonePtr(a.UpdatedAt)
	if a.Compliance != nil {
		c.Compliance = a.Compliance.clone()
	}
	c.Tickets = nil
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// EquipmentPatch - частичное обновление. Регуляторные поля приходят плоско
// и проходят через шлюз соответствия до записи в вариант.
type EquipmentPatch struct {
	Code     types.Field[string]
	Name     types.Field[string]
	Category types.Field[constants.EquipmentCategory]

	Make   types.Field[string]
	Model  types.Field[string]
	Serial types.Field[string]

	OwnerDepartmentID types.Field[string]
	UnitID            types.Field[string]
	RoomID            types.Field[string]
	LocationNodeID    types.Field[string]

	OperationalStatus types.Field[constants.OperationalStatus]
	IsSchedulable     types.Field[bool]

	AmcVendor       types.Field[string]
	AmcValidFrom    types.Field[time.Time]
	AmcValidTo      types.Field[time.Time]
	WarrantyValidTo types.Field[time.Time]
	PmFrequencyDays types.Field[int]
	NextPmDueAt     types.Field[time.Time]

	AerbLicenseNo types.Field[string]
	AerbValidTo   types.Field[time.Time]
	PcpndtRegNo   types.Field[string]
	PcpndtValidTo types.Field[time.Time]
}

// ComplianceFields - плоское представление регуляторных полей (вход API и колонки БД).
type ComplianceFields struct {
	AerbLicenseNo *string
	AerbValidTo   *time.Time
	PcpndtRegNo   *string
	PcpndtValidTo *time.Time
}
