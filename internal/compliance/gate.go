package compliance

import (
	"strings"
	"time"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
)

type Mode string

const (
	// ModeWarn - неполные регуляторные данные только дают предупреждения.
	ModeWarn Mode = "WARN"
	// ModeBlock - планируемое оборудование без валидной лицензии не сохраняется.
	ModeBlock Mode = "BLOCK"
)

type Policy struct {
	Mode                       Mode
	RequireAerbForRadiology    bool
	RequireValidAerb           bool
	RequirePcpndtForUltrasound bool
	RequireValidPcpndt         bool
}

func DefaultPolicy() Policy {
	return Policy{
		Mode:                       ModeWarn,
		RequireAerbForRadiology:    true,
		RequireValidAerb:           true,
		RequirePcpndtForUltrasound: true,
		RequireValidPcpndt:         true,
	}
}

const (
	WarnAerbMissing   = "Для планирования RADIOLOGY-оборудования нужны номер лицензии AERB и срок ее действия"
	WarnAerbExpired   = "Срок действия лицензии AERB истек"
	WarnPcpndtMissing = "Для планирования ULTRASOUND-оборудования нужны номер регистрации PCPNDT и срок ее действия"
	WarnPcpndtExpired = "Срок действия регистрации PCPNDT истек"
)

// Gate - шлюз соответствия: таблица допустимых полей по категориям плюс политика
// для планируемого оборудования.
type Gate struct {
	policy Policy
}

func NewGate(policy Policy) *Gate {
	if policy.Mode == "" {
		policy.Mode = ModeWarn
	}
	return &Gate{policy: policy}
}

func (g *Gate) Policy() Policy { return g.policy }

// Build проверяет плоские поля против категории и возвращает вариант.
// Заполненное поле чужой категории - ComplianceViolation.
func (g *Gate) Build(category constants.EquipmentCategory, f entities.ComplianceFields) (entities.Compliance, error) {
	f = normalize(f)

	aerbSet := f.AerbLicenseNo != nil || f.AerbValidTo != nil
	pcpndtSet := f.PcpndtRegNo != nil || f.PcpndtValidTo != nil

	switch category {
	case constants.CategoryGeneral:
		if aerbSet {
			return nil, apperrors.NewComplianceViolation(string(category), forbiddenAerbField(f), "поля AERB допустимы только для категории RADIOLOGY")
		}
		if pcpndtSet {
			return nil, apperrors.NewComplianceViolation(string(category), forbiddenPcpndtField(f), "поля PCPNDT допустимы только для категории ULTRASOUND")
		}
		return entities.GeneralCompliance{}, nil
	case constants.CategoryRadiology:
		if pcpndtSet {
			return nil, apperrors.NewComplianceViolation(string(category), forbiddenPcpndtField(f), "поля PCPNDT допустимы только для категории ULTRASOUND")
		}
		return entities.RadiologyCompliance{AerbLicenseNo: f.AerbLicenseNo, AerbValidTo: f.AerbValidTo}, nil
	case constants.CategoryUltrasound:
		if aerbSet {
			return nil, apperrors.NewComplianceViolation(string(category), forbiddenAerbField(f), "поля AERB допустимы только для категории RADIOLOGY")
		}
		return entities.UltrasoundCompliance{PcpndtRegNo: f.PcpndtRegNo, PcpndtValidTo: f.PcpndtValidTo}, nil
	default:
		return nil, apperrors.NewValidationError("category", "неизвестная категория %q", category)
	}
}

// Merge применяет патч к текущему варианту. При смене категории поля старой
// категории очищаются, новые берутся только из патча.
func (g *Gate) Merge(current entities.Compliance, target constants.EquipmentCategory, p entities.EquipmentPatch) (entities.Compliance, error) {
	var f entities.ComplianceFields
	if current != nil && current.Category() == target {
		f = current.Fields()
	}
	p.AerbLicenseNo.Apply(&f.AerbLicenseNo)
	p.AerbValidTo.Apply(&f.AerbValidTo)
	p.PcpndtRegNo.Apply(&f.PcpndtRegNo)
	p.PcpndtValidTo.Apply(&f.PcpndtValidTo)
	return g.Build(target, f)
}

// Validate возвращает предупреждения для планируемого оборудования без полных
// или действующих регуляторных данных. В режиме BLOCK первое из них становится ошибкой.
func (g *Gate) Validate(asset *entities.EquipmentAsset, now time.Time) ([]string, error) {
	warnings := g.Warnings(asset, now)
	if len(warnings) > 0 && g.policy.Mode == ModeBlock {
		return warnings, apperrors.NewComplianceViolation(string(asset.Category()), "", "%s", warnings[0])
	}
	return warnings, nil
}

func (g *Gate) Warnings(asset *entities.EquipmentAsset, now time.Time) []string {
	if !asset.IsSchedulable {
		return nil
	}
	var warnings []string

	switch c := asset.Compliance.(type) {
	case entities.RadiologyCompliance:
		if !g.policy.RequireAerbForRadiology {
			break
		}
		if c.AerbLicenseNo == nil || c.AerbValidTo == nil {
			warnings = append(warnings, WarnAerbMissing)
		} else if g.policy.RequireValidAerb && c.AerbValidTo.Before(now) {
			warnings = append(warnings, WarnAerbExpired)
		}
	case entities.UltrasoundCompliance:
		if !g.policy.RequirePcpndtForUltrasound {
			break
		}
		if c.PcpndtRegNo == nil || c.PcpndtValidTo == nil {
			warnings = append(warnings, WarnPcpndtMissing)
		} else if g.policy.RequireValidPcpndt && c.PcpndtValidTo.Before(now) {
			warnings = append(warnings, WarnPcpndtExpired)
		}
	}
	return warnings
}

func normalize(f entities.ComplianceFields) entities.ComplianceFields {
	f.AerbLicenseNo = trimmed(f.AerbLicenseNo)
	f.PcpndtRegNo = trimmed(f.PcpndtRegNo)
	return f
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func forbiddenAerbField(f entities.ComplianceFields) string {
	if f.AerbLicenseNo != nil {
		return "aerb_license_no"
	}
	return "aerb_valid_to"
}

func forbiddenPcpndtField(f entities.ComplianceFields) string {
	if f.PcpndtRegNo != nil {
		return "pcpndt_reg_no"
	}
	return "pcpndt_valid_to"
}
