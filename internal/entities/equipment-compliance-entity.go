package entities

import (
	"time"

	"equipment-register/pkg/constants"
)

// Compliance - закрытый вариант регуляторных данных. Каждая категория несет
// только свои поля, поэтому AERB у УЗИ-аппарата просто не во что записать.
type Compliance interface {
	Category() constants.EquipmentCategory
	// ValidTo - срок действия лицензии/регистрации своей категории, nil для GENERAL.
	ValidTo() *time.Time
	// Fields - плоская форма для хранения.
	Fields() ComplianceFields
	clone() Compliance
}

type GeneralCompliance struct{}

func (GeneralCompliance) Category() constants.EquipmentCategory { return constants.CategoryGeneral }
func (GeneralCompliance) ValidTo() *time.Time                   { return nil }
func (GeneralCompliance) Fields() ComplianceFields              { return ComplianceFields{} }
func (GeneralCompliance) clone() Compliance                     { return GeneralCompliance{} }

// RadiologyCompliance - лицензия AERB.
type RadiologyCompliance struct {
	AerbLicenseNo *string
	AerbValidTo   *time.Time
}

func (RadiologyCompliance) Category() constants.EquipmentCategory { return constants.CategoryRadiology }
func (c RadiologyCompliance) ValidTo() *time.Time                 { return c.AerbValidTo }
func (c RadiologyCompliance) Fields() ComplianceFields {
	return ComplianceFields{AerbLicenseNo: c.AerbLicenseNo, AerbValidTo: c.AerbValidTo}
}
func (c RadiologyCompliance) clone() Compliance {
	return RadiologyCompliance{AerbLicenseNo: clonePtr(c.AerbLicenseNo), AerbValidTo: clonePtr(c.AerbValidTo)}
}

// UltrasoundCompliance - регистрация PCPNDT.
type UltrasoundCompliance struct {
	PcpndtRegNo   *string
	PcpndtValidTo *time.Time
}

func (UltrasoundCompliance) Category() constants.EquipmentCategory {
	return constants.CategoryUltrasound
}
func (c UltrasoundCompliance) ValidTo() *time.Time { return c.PcpndtValidTo }
func (c UltrasoundCompliance) Fields() ComplianceFields {
	return ComplianceFields{PcpndtRegNo: c.PcpndtRegNo, PcpndtValidTo: c.PcpndtValidTo}
}
func (c UltrasoundCompliance) clone() Compliance {
	return UltrasoundCompliance{PcpndtRegNo: clonePtr(c.PcpndtRegNo), PcpndtValidTo: clonePtr(c.PcpndtValidTo)}
}

// ComplianceFromStorage восстанавливает вариант из колонок БД, отбрасывая
// поля чужой категории.
func ComplianceFromStorage(category constants.EquipmentCategory, f ComplianceFields) Compliance {
	switch category {
	case constants.CategoryRadiology:
		return RadiologyCompliance{AerbLicenseNo: f.AerbLicenseNo, AerbValidTo: f.AerbValidTo}
	case constants.CategoryUltrasound:
		return UltrasoundCompliance{PcpndtRegNo: f.PcpndtRegNo, PcpndtValidTo: f.PcpndtValidTo}
	default:
		return GeneralCompliance{}
	}
}
