package customvalidator

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"equipment-register/pkg/constants"
	"equipment-register/pkg/types"
)

// registerFieldTypes учит валидатор смотреть внутрь types.Field. Адаптер
// отдает указатель: nil (поле не передано или null) пропускается `omitempty`,
// а переданный ноль проверяется остальными правилами.
func registerFieldTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(fieldValue[string], types.Field[string]{})
	v.RegisterCustomTypeFunc(fieldValue[int], types.Field[int]{})
	v.RegisterCustomTypeFunc(fieldValue[bool], types.Field[bool]{})
	v.RegisterCustomTypeFunc(fieldValue[constants.EquipmentCategory], types.Field[constants.EquipmentCategory]{})
	v.RegisterCustomTypeFunc(fieldValue[constants.OperationalStatus], types.Field[constants.OperationalStatus]{})
}

func fieldValue[T any](field reflect.Value) interface{} {
	if f, ok := field.Interface().(types.Field[T]); ok {
		return f.Value
	}
	return nil
}
