package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-register/internal/compliance"
	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
)

func basePatch(code, name string, category constants.EquipmentCategory) entities.EquipmentPatch {
	return entities.EquipmentPatch{
		Code:     types.SetTo(code),
		Name:     types.SetTo(name),
		Category: types.SetTo(category),
	}
}

func TestRegisterAsset_Defaults(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("  xray_01 ", "X-Ray", constants.CategoryRadiology)
	p.PmFrequencyDays = types.SetTo(90)

	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)

	a := res.Asset
	assert.Equal(t, "XRAY-01", a.Code)
	assert.Equal(t, constants.StatusOperational, a.OperationalStatus)
	assert.False(t, a.IsSchedulable)
	require.NotNil(t, a.NextPmDueAt)
	assert.Equal(t, f.clock.Now().AddDate(0, 0, 90), *a.NextPmDueAt)

	audit, err := f.repo.ListAudit(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, constants.AuditEquipmentCreate, audit[0].Action)
}

func TestRegisterAsset_Validation(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	_, err := f.equipment.RegisterAsset(ctx, "B1", basePatch(" ", "X", constants.CategoryGeneral))
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.equipment.RegisterAsset(ctx, "B1", basePatch("A-1", "  ", constants.CategoryGeneral))
	assert.True(t, apperrors.IsValidation(err))

	p := basePatch("A-2", "Room only", constants.CategoryGeneral)
	p.RoomID = types.SetTo("R-1")
	_, err = f.equipment.RegisterAsset(ctx, "B1", p)
	assert.True(t, apperrors.IsValidation(err))

	p = basePatch("A-3", "Down", constants.CategoryGeneral)
	p.OperationalStatus = types.SetTo(constants.StatusDown)
	_, err = f.equipment.RegisterAsset(ctx, "B1", p)
	assert.True(t, apperrors.IsValidation(err))

	p = basePatch("A-4", "AMC", constants.CategoryGeneral)
	p.AmcValidFrom = types.SetTo(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	p.AmcValidTo = types.SetTo(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	_, err = f.equipment.RegisterAsset(ctx, "B1", p)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRegisterAsset_DuplicateCodePerBranch(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	_, err := f.equipment.RegisterAsset(ctx, "B1", basePatch("CT-1", "CT", constants.CategoryGeneral))
	require.NoError(t, err)

	_, err = f.equipment.RegisterAsset(ctx, "B1", basePatch("ct 1", "CT again", constants.CategoryGeneral))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "code", vErr.Field)

	_, err = f.equipment.RegisterAsset(ctx, "B2", basePatch("CT-1", "CT", constants.CategoryGeneral))
	assert.NoError(t, err)
}

func TestRegisterAsset_ComplianceForbiddenFields(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("XR-1", "X-Ray", constants.CategoryGeneral)
	p.AerbLicenseNo = types.SetTo("AERB-77")
	_, err := f.equipment.RegisterAsset(ctx, "B1", p)
	assert.True(t, apperrors.IsComplianceViolation(err))

	p.Category = types.SetTo(constants.CategoryRadiology)
	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)
	assert.Equal(t, constants.CategoryRadiology, res.Asset.Category())
	assert.Equal(t, "AERB-77", *res.Asset.Compliance.Fields().AerbLicenseNo)
}

func TestRegisterAsset_SchedulableWarnVsBlock(t *testing.T) {
	ctx := context.Background()

	p := basePatch("US-1", "Ultrasound", constants.CategoryUltrasound)
	p.IsSchedulable = types.SetTo(true)

	warn := newFixture(compliance.ModeWarn)
	res, err := warn.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)
	assert.Equal(t, []string{compliance.WarnPcpndtMissing}, res.Warnings)

	block := newFixture(compliance.ModeBlock)
	_, err = block.equipment.RegisterAsset(ctx, "B1", p)
	assert.True(t, apperrors.IsComplianceViolation(err))
}

func TestUpdateAsset_RetiredForcesNotSchedulable(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("GEN-1", "Monitor", constants.CategoryGeneral)
	p.IsSchedulable = types.SetTo(true)
	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)
	require.True(t, res.Asset.IsSchedulable)

	upd, err := f.equipment.UpdateAsset(ctx, res.Asset.ID, entities.EquipmentPatch{
		OperationalStatus: types.SetTo(constants.StatusRetired),
		IsSchedulable:     types.SetTo(true),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRetired, upd.Asset.OperationalStatus)
	assert.False(t, upd.Asset.IsSchedulable)

	upd, err = f.equipment.UpdateAsset(ctx, res.Asset.ID, entities.EquipmentPatch{IsSchedulable: types.SetTo(true)})
	require.NoError(t, err)
	assert.False(t, upd.Asset.IsSchedulable)

	_, err = f.equipment.UpdateAsset(ctx, res.Asset.ID, entities.EquipmentPatch{
		OperationalStatus: types.SetTo(constants.StatusOperational),
	})
	assert.True(t, apperrors.IsInvalidState(err))

	got, err := f.equipment.GetAsset(ctx, res.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRetired, got.OperationalStatus)
	assert.False(t, got.IsSchedulable)
}

func TestUpdateAsset_Transitions(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	res, err := f.equipment.RegisterAsset(ctx, "B1", basePatch("GEN-2", "Pump", constants.CategoryGeneral))
	require.NoError(t, err)
	id := res.Asset.ID

	_, err = f.equipment.UpdateAsset(ctx, id, entities.EquipmentPatch{OperationalStatus: types.SetTo(constants.StatusDown)})
	assert.True(t, apperrors.IsInvalidState(err))

	upd, err := f.equipment.UpdateAsset(ctx, id, entities.EquipmentPatch{OperationalStatus: types.SetTo(constants.StatusMaintenance)})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusMaintenance, upd.Asset.OperationalStatus)

	_, err = f.downtime.OpenDowntime(ctx, id, "Broken", nil)
	require.NoError(t, err)

	_, err = f.equipment.UpdateAsset(ctx, id, entities.EquipmentPatch{OperationalStatus: types.SetTo(constants.StatusOperational)})
	assert.True(t, apperrors.IsInvalidState(err))

	_, err = f.equipment.UpdateAsset(ctx, id, entities.EquipmentPatch{Code: types.SetTo("OTHER")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.equipment.UpdateAsset(ctx, uuid.New(), entities.EquipmentPatch{Name: types.SetTo("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAsset_CategoryChangePurgesCompliance(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("XR-2", "X-Ray", constants.CategoryRadiology)
	p.AerbLicenseNo = types.SetTo("AERB-1")
	p.AerbValidTo = types.SetTo(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)

	upd, err := f.equipment.UpdateAsset(ctx, res.Asset.ID, entities.EquipmentPatch{
		Category:    types.SetTo(constants.CategoryUltrasound),
		PcpndtRegNo: types.SetTo("PC-9"),
	})
	require.NoError(t, err)

	fields := upd.Asset.Compliance.Fields()
	assert.Nil(t, fields.AerbLicenseNo)
	assert.Nil(t, fields.AerbValidTo)
	require.NotNil(t, fields.PcpndtRegNo)
	assert.Equal(t, "PC-9", *fields.PcpndtRegNo)

	stored, err := f.repo.FindAsset(ctx, res.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.CategoryUltrasound, stored.Category())
	assert.Nil(t, stored.Compliance.Fields().AerbLicenseNo)

	_, err = f.equipment.UpdateAsset(ctx, res.Asset.ID, entities.EquipmentPatch{AerbLicenseNo: types.SetTo("AERB-2")})
	assert.True(t, apperrors.IsComplianceViolation(err))
}

func TestRetireAsset_ForceClosesOpenTicketAndIsIdempotent(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	res, err := f.equipment.RegisterAsset(ctx, "B1", basePatch("GEN-3", "Ventilator", constants.CategoryGeneral))
	require.NoError(t, err)
	ticket, err := f.downtime.OpenDowntime(ctx, res.Asset.ID, "Power failure", nil)
	require.NoError(t, err)

	retired, err := f.equipment.RetireAsset(ctx, res.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRetired, retired.Asset.OperationalStatus)

	tickets, err := f.equipment.ListDowntime(ctx, res.Asset.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, ticket.ID, tickets[0].ID)
	assert.Equal(t, constants.DowntimeClosed, tickets[0].Status)
	require.NotNil(t, tickets[0].Notes)
	assert.Equal(t, constants.DowntimeRetiredNote, *tickets[0].Notes)

	again, err := f.equipment.RetireAsset(ctx, res.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRetired, again.Asset.OperationalStatus)

	audit, err := f.repo.ListAudit(ctx, res.Asset.ID)
	require.NoError(t, err)
	retires := 0
	for _, e := range audit {
		if e.Action == constants.AuditEquipmentRetire {
			retires++
		}
	}
	assert.Equal(t, 1, retires)

	_, err = f.downtime.OpenDowntime(ctx, res.Asset.ID, "Again", nil)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestListAssets_PagingAndWindows(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	for i, due := range []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	} {
		p := basePatch("PM-"+string(rune('A'+i)), "Asset", constants.CategoryGeneral)
		p.NextPmDueAt = types.SetTo(due)
		_, err := f.equipment.RegisterAsset(ctx, "B1", p)
		require.NoError(t, err)
	}

	window := 30
	list, total, err := f.equipment.ListAssets(ctx, entities.EquipmentFilter{BranchID: "B1", PmDueInDays: &window})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = f.equipment.ListAssets(ctx, entities.EquipmentFilter{BranchID: "B1", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)

	_, _, err = f.equipment.ListAssets(ctx, entities.EquipmentFilter{})
	assert.True(t, apperrors.IsValidation(err))
}
