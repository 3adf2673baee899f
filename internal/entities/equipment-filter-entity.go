package entities

import (
	"time"

	"equipment-register/pkg/constants"
)

// EquipmentFilter - параметры списка оборудования.
type EquipmentFilter struct {
	BranchID          string
	Search            string
	Category          *constants.EquipmentCategory
	OperationalStatus *constants.OperationalStatus
	OwnerDepartmentID *string
	UnitID            *string
	RoomID            *string
	LocationNodeID    *string

	// Окна по срокам (дней от текущего момента, просроченные включаются)
	PmDueInDays              *int
	AmcExpiringInDays        *int
	WarrantyExpiringInDays   *int
	ComplianceExpiringInDays *int

	Page     int
	PageSize int

	// Момент, от которого считаются окна
	Now time.Time
}

func (f EquipmentFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// BranchSnapshot - согласованный срез каталога и открытых тикетов филиала.
type BranchSnapshot struct {
	BranchID    string
	Assets      []EquipmentAsset
	OpenTickets []OpenDowntime
}
