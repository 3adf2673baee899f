package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-register/pkg/constants"
	"equipment-register/pkg/types"
)

type sample struct {
	Code     string                                   `validate:"required,equipment_code"`
	Category types.Field[constants.EquipmentCategory] `validate:"omitempty,equipment_category"`
	Status   types.Field[constants.OperationalStatus] `validate:"omitempty,operational_status"`
	Freq     types.Field[int]                         `validate:"omitempty,min=1"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestRules(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(sample{Code: "xray 01"}))
	assert.NoError(t, v.Struct(sample{Code: "CT-1", Category: types.SetTo(constants.CategoryRadiology)}))
	assert.NoError(t, v.Struct(sample{Code: "CT-1", Category: types.Null[constants.EquipmentCategory]()}))

	assert.Error(t, v.Struct(sample{Code: "-bad"}))
	assert.Error(t, v.Struct(sample{Code: "CT-1", Category: types.SetTo(constants.EquipmentCategory("MRI"))}))
	assert.Error(t, v.Struct(sample{Code: "CT-1", Status: types.SetTo(constants.OperationalStatus("BROKEN"))}))
	assert.Error(t, v.Struct(sample{Code: "CT-1", Freq: types.SetTo(0)}))
}

func TestFieldTypes_ZeroIsValidatedNullIsSkipped(t *testing.T) {
	v := newValidator(t)

	assert.Error(t, v.Struct(sample{Code: "CT-1", Freq: types.SetTo(-3)}))
	assert.Error(t, v.Struct(sample{Code: "CT-1", Status: types.SetTo(constants.OperationalStatus(""))}))
	assert.NoError(t, v.Struct(sample{Code: "CT-1", Freq: types.SetTo(1)}))
	assert.NoError(t, v.Struct(sample{Code: "CT-1", Freq: types.Null[int]()}))
	assert.NoError(t, v.Struct(sample{Code: "CT-1", Freq: types.Field[int]{}}))
}
