package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
	"equipment-register/pkg/types"
)

type CreateEquipmentDTO struct {
	BranchID string                      `json:"branch_id" validate:"required,max=64"`
	Code     string                      `json:"code"      validate:"required,equipment_code"`
	Name     string                      `json:"name"      validate:"required,max=160"`
	Category constants.EquipmentCategory `json:"category"  validate:"omitempty,equipment_category"`

	Make   *string `json:"make,omitempty"   validate:"omitempty,max=120"`
	Model  *string `json:"model,omitempty"  validate:"omitempty,max=120"`
	Serial *string `json:"serial,omitempty" validate:"omitempty,max=120"`

	OwnerDepartmentID *string `json:"owner_department_id,omitempty" validate:"omitempty,max=64"`
	UnitID            *string `json:"unit_id,omitempty"             validate:"omitempty,max=64"`
	RoomID            *string `json:"room_id,omitempty"             validate:"omitempty,max=64"`
	LocationNodeID    *string `json:"location_node_id,omitempty"    validate:"omitempty,max=64"`

	OperationalStatus *constants.OperationalStatus `json:"operational_status,omitempty" validate:"omitempty,operational_status"`
	IsSchedulable     *bool                        `json:"is_schedulable,omitempty"`

	AmcVendor       *string     `json:"amc_vendor,omitempty" validate:"omitempty,max=160"`
	AmcValidFrom    *types.Date `json:"amc_valid_from,omitempty"`
	AmcValidTo      *types.Date `json:"amc_valid_to,omitempty"`
	WarrantyValidTo *types.Date `json:"warranty_valid_to,omitempty"`
	PmFrequencyDays *int        `json:"pm_frequency_days,omitempty" validate:"omitempty,min=1,max=3650"`
	NextPmDueAt     *types.Date `json:"next_pm_due_at,omitempty"`

	AerbLicenseNo *string     `json:"aerb_license_no,omitempty" validate:"omitempty,max=64"`
	AerbValidTo   *types.Date `json:"aerb_valid_to,omitempty"`
	PcpndtRegNo   *string     `json:"pcpndt_reg_no,omitempty"   validate:"omitempty,max=64"`
	PcpndtValidTo *types.Date `json:"pcpndt_valid_to,omitempty"`
}

// ToPatch - создание как патч поверх пустой записи: переданные поля помечены Set.
func (d CreateEquipmentDTO) ToPatch() entities.EquipmentPatch {
	p := entities.EquipmentPatch{
		Code:              types.SetTo(d.Code),
		Name:              types.SetTo(d.Name),
		Make:              fromPtr(d.Make),
		Model:             fromPtr(d.Model),
		Serial:            fromPtr(d.Serial),
		OwnerDepartmentID: fromPtr(d.OwnerDepartmentID),
		UnitID:            fromPtr(d.UnitID),
		RoomID:            fromPtr(d.RoomID),
		LocationNodeID:    fromPtr(d.LocationNodeID),
		OperationalStatus: fromPtr(d.OperationalStatus),
		IsSchedulable:     fromPtr(d.IsSchedulable),
		AmcVendor:         fromPtr(d.AmcVendor),
		AmcValidFrom:      fromDate(d.AmcValidFrom),
		AmcValidTo:        fromDate(d.AmcValidTo),
		WarrantyValidTo:   fromDate(d.WarrantyValidTo),
		PmFrequencyDays:   fromPtr(d.PmFrequencyDays),
		NextPmDueAt:       fromDate(d.NextPmDueAt),
		AerbLicenseNo:     fromPtr(d.AerbLicenseNo),
		AerbValidTo:       fromDate(d.AerbValidTo),
		PcpndtRegNo:       fromPtr(d.PcpndtRegNo),
		PcpndtValidTo:     fromDate(d.PcpndtValidTo),
	}
	if d.Category != "" {
		p.Category = types.SetTo(d.Category)
	}
	return p
}

// UpdateEquipmentDTO - PATCH: отсутствующее поле не меняется, null очищает.
type UpdateEquipmentDTO struct {
	Code     types.Field[string]                      `json:"code"     validate:"omitempty,equipment_code"`
	Name     types.Field[string]                      `json:"name"     validate:"omitempty,max=160"`
	Category types.Field[constants.EquipmentCategory] `json:"category" validate:"omitempty,equipment_category"`

	Make   types.Field[string] `json:"make"   validate:"omitempty,max=120"`
	Model  types.Field[string] `json:"model"  validate:"omitempty,max=120"`
	Serial types.Field[string] `json:"serial" validate:"omitempty,max=120"`

	OwnerDepartmentID types.Field[string] `json:"owner_department_id" validate:"omitempty,max=64"`
	UnitID            types.Field[string] `json:"unit_id"             validate:"omitempty,max=64"`
	RoomID            types.Field[string] `json:"room_id"             validate:"omitempty,max=64"`
	LocationNodeID    types.Field[string] `json:"location_node_id"    validate:"omitempty,max=64"`

	OperationalStatus types.Field[constants.OperationalStatus] `json:"operational_status" validate:"omitempty,operational_status"`
	IsSchedulable     types.Field[bool]                        `json:"is_schedulable"`

	AmcVendor       types.Field[string]     `json:"amc_vendor" validate:"omitempty,max=160"`
	AmcValidFrom    types.Field[types.Date] `json:"amc_valid_from"`
	AmcValidTo      types.Field[types.Date] `json:"amc_valid_to"`
	WarrantyValidTo types.Field[types.Date] `json:"warranty_valid_to"`
	PmFrequencyDays types.Field[int]        `json:"pm_frequency_days" validate:"omitempty,min=1,max=3650"`
	NextPmDueAt     types.Field[types.Date] `json:"next_pm_due_at"`

	AerbLicenseNo types.Field[string]     `json:"aerb_license_no" validate:"omitempty,max=64"`
	AerbValidTo   types.Field[types.Date] `json:"aerb_valid_to"`
	PcpndtRegNo   types.Field[string]     `json:"pcpndt_reg_no"   validate:"omitempty,max=64"`
	PcpndtValidTo types.Field[types.Date] `json:"pcpndt_valid_to"`
}

func (d UpdateEquipmentDTO) ToPatch() entities.EquipmentPatch {
	return entities.EquipmentPatch{
		Code:              d.Code,
		Name:              d.Name,
		Category:          d.Category,
		Make:              d.Make,
		Model:             d.Model,
		Serial:            d.Serial,
		OwnerDepartmentID: d.OwnerDepartmentID,
		UnitID:            d.UnitID,
		RoomID:            d.RoomID,
		LocationNodeID:    d.LocationNodeID,
		OperationalStatus: d.OperationalStatus,
		IsSchedulable:     d.IsSchedulable,
		AmcVendor:         d.AmcVendor,
		AmcValidFrom:      types.DateField(d.AmcValidFrom),
		AmcValidTo:        types.DateField(d.AmcValidTo),
		WarrantyValidTo:   types.DateField(d.WarrantyValidTo),
		PmFrequencyDays:   d.PmFrequencyDays,
		NextPmDueAt:       types.DateField(d.NextPmDueAt),
		AerbLicenseNo:     d.AerbLicenseNo,
		AerbValidTo:       types.DateField(d.AerbValidTo),
		PcpndtRegNo:       d.PcpndtRegNo,
		PcpndtValidTo:     types.DateField(d.PcpndtValidTo),
	}
}

func fromPtr[T any](v *T) types.Field[T] {
	if v == nil {
		return types.Field[T]{}
	}
	return types.SetTo(*v)
}

func fromDate(d *types.Date) types.Field[time.Time] {
	if d == nil {
		return types.Field[time.Time]{}
	}
	return types.SetTo(d.Time)
}

// EquipmentDTO - ответ по оборудованию. Регуляторные поля чужой категории
// в ответ не попадают.
type EquipmentDTO struct {
	ID       string                      `json:"id"`
	BranchID string                      `json:"branch_id"`
	Code     string                      `json:"code"`
	Name     string                      `json:"name"`
	Category constants.EquipmentCategory `json:"category"`

	Make   null.String `json:"make"`
	Model  null.String `json:"model"`
	Serial null.String `json:"serial"`

	OwnerDepartmentID null.String `json:"owner_department_id"`
	UnitID            null.String `json:"unit_id"`
	RoomID            null.String `json:"room_id"`
	LocationNodeID    null.String `json:"location_node_id"`

	OperationalStatus constants.OperationalStatus `json:"operational_status"`
	IsSchedulable     bool                        `json:"is_schedulable"`

	AmcVendor       null.String `json:"amc_vendor"`
	AmcValidFrom    null.Time   `json:"amc_valid_from"`
	AmcValidTo      null.Time   `json:"amc_valid_to"`
	WarrantyValidTo null.Time   `json:"warranty_valid_to"`
	PmFrequencyDays null.Int    `json:"pm_frequency_days"`
	NextPmDueAt     null.Time   `json:"next_pm_due_at"`

	AerbLicenseNo *null.String `json:"aerb_license_no,omitempty"`
	AerbValidTo   *null.Time   `json:"aerb_valid_to,omitempty"`
	PcpndtRegNo   *null.String `json:"pcpndt_reg_no,omitempty"`
	PcpndtValidTo *null.Time   `json:"pcpndt_valid_to,omitempty"`

	Warnings        []string            `json:"warnings,omitempty"`
	DowntimeTickets []DowntimeTicketDTO `json:"downtime_tickets,omitempty"`

	CreatedAt null.Time `json:"created_at"`
	UpdatedAt null.Time `json:"updated_at"`
}

func EquipmentToDTO(a *entities.EquipmentAsset, warnings []string) EquipmentDTO {
	out := EquipmentDTO{
		ID:                a.ID.String(),
		BranchID:          a.BranchID,
		Code:              a.Code,
		Name:              a.Name,
		Category:          a.Category(),
		Make:              null.StringFromPtr(a.Make),
		Model:             null.StringFromPtr(a.Model),
		Serial:            null.StringFromPtr(a.Serial),
		OwnerDepartmentID: null.StringFromPtr(a.OwnerDepartmentID),
		UnitID:            null.StringFromPtr(a.UnitID),
		RoomID:            null.StringFromPtr(a.RoomID),
		LocationNodeID:    null.StringFromPtr(a.LocationNodeID),
		OperationalStatus: a.OperationalStatus,
		IsSchedulable:     a.IsSchedulable,
		AmcVendor:         null.StringFromPtr(a.AmcVendor),
		AmcValidFrom:      null.TimeFromPtr(a.AmcValidFrom),
		AmcValidTo:        null.TimeFromPtr(a.AmcValidTo),
		WarrantyValidTo:   null.TimeFromPtr(a.WarrantyValidTo),
		NextPmDueAt:       null.TimeFromPtr(a.NextPmDueAt),
		Warnings:          warnings,
		CreatedAt:         null.TimeFromPtr(a.CreatedAt),
		UpdatedAt:         null.TimeFromPtr(a.UpdatedAt),
	}
	if a.PmFrequencyDays != nil {
		out.PmFrequencyDays = null.IntFrom(*a.PmFrequencyDays)
	}

	switch c := a.Compliance.(type) {
	case entities.RadiologyCompliance:
		no, to := null.StringFromPtr(c.AerbLicenseNo), null.TimeFromPtr(c.AerbValidTo)
		out.AerbLicenseNo, out.AerbValidTo = &no, &to
	case entities.UltrasoundCompliance:
		no, to := null.StringFromPtr(c.PcpndtRegNo), null.TimeFromPtr(c.PcpndtValidTo)
		out.PcpndtRegNo, out.PcpndtValidTo = &no, &to
	}

	if len(a.Tickets) > 0 {
		out.DowntimeTickets = DowntimeTicketsToDTO(a.Tickets)
	}
	return out
}

func EquipmentListToDTO(list []entities.EquipmentAsset) []EquipmentDTO {
	out := make([]EquipmentDTO, 0, len(list))
	for i := range list {
		out = append(out, EquipmentToDTO(&list[i], nil))
	}
	return out
}
