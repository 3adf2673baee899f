package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"equipment-register/pkg/constants"
)

// Код до канонизации: буквы, цифры, пробелы, '-', '_' и '.'.
var equipmentCodeRe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\s._-]{0,63}$`)

// RegisterCustomValidations регистрирует правила и адаптеры типов
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	registerFieldTypes(v)

	if err := v.RegisterValidation("equipment_category", isEquipmentCategory); err != nil {
		return err
	}
	if err := v.RegisterValidation("operational_status", isOperationalStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("equipment_code", isEquipmentCode); err != nil {
		return err
	}
	return nil
}

func isEquipmentCategory(fl validator.FieldLevel) bool {
	return constants.EquipmentCategory(fl.Field().String()).IsValid()
}

func isOperationalStatus(fl validator.FieldLevel) bool {
	return constants.OperationalStatus(fl.Field().String()).IsValid()
}

func isEquipmentCode(fl validator.FieldLevel) bool {
	return equipmentCodeRe.MatchString(fl.Field().String())
}
