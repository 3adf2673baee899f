package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/compliance"
	"equipment-register/internal/entities"
	"equipment-register/internal/repositories/memory"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
)

func TestGetAlerts_PmDueOverdueIsCritical(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("XRAY-01", "X-Ray", constants.CategoryRadiology)
	p.NextPmDueAt = types.SetTo(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	within := 30
	alerts, err := f.alerts.GetAlerts(ctx, "B1", &within)
	require.NoError(t, err)

	require.Len(t, alerts.PmDue, 1)
	item := alerts.PmDue[0]
	assert.Equal(t, "XRAY-01", item.Asset.Code)
	assert.Equal(t, -9, item.DaysUntil)
	assert.Equal(t, alerting.SeverityCritical, item.Severity)
}

func TestGetSummary_OpenDowntimeCountFollowsTickets(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	asset := registerGeneral(t, f, "SUM-1")
	registerGeneral(t, f, "SUM-2")

	before, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, 2, before.Total)
	assert.Equal(t, 0, before.OpenDowntimeCount)

	ticket, err := f.downtime.OpenDowntime(ctx, asset.ID, "Power failure", nil)
	require.NoError(t, err)

	during, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, before.OpenDowntimeCount+1, during.OpenDowntimeCount)
	assert.Equal(t, 1, during.ByStatus[constants.StatusDown])

	_, err = f.downtime.CloseDowntime(ctx, ticket.ID, nil)
	require.NoError(t, err)

	after, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, during.OpenDowntimeCount-1, after.OpenDowntimeCount)
	assert.Equal(t, 2, after.ByStatus[constants.StatusOperational])
}

func TestGetSummary_ServedFromCache(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	registerGeneral(t, f, "C-1")

	first, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	_, cached := f.cache.data[summaryCacheKey("B1", 1)]
	assert.True(t, cached)

	f.clock.Set(f.clock.Now().Add(time.Hour))
	second, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.True(t, first.EvaluatedAt.Equal(second.EvaluatedAt))

	registerGeneral(t, f, "C-2")
	assert.Equal(t, "2", f.cache.data[summaryGenerationKey("B1")])

	third, err := f.alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
	assert.False(t, first.EvaluatedAt.Equal(third.EvaluatedAt))
}

// snapshotHookRepo выполняет after один раз сразу после того, как срез филиала прочитан.
type snapshotHookRepo struct {
	*memory.EquipmentRepository
	after func()
}

func (r *snapshotHookRepo) BranchSnapshot(ctx context.Context, branchID string) (*entities.BranchSnapshot, error) {
	snap, err := r.EquipmentRepository.BranchSnapshot(ctx, branchID)
	if hook := r.after; hook != nil {
		r.after = nil
		hook()
	}
	return snap, err
}

func TestGetSummary_MutationDuringComputeIsNotCached(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	asset := registerGeneral(t, f, "RACE-1")

	repo := &snapshotHookRepo{EquipmentRepository: f.repo}
	base := NewBaseService(f.cache, nil, zap.NewNop(), f.clock.Now)
	alerts := NewEquipmentAlertsService(base, repo, alerting.NewProjector(alerting.DefaultPolicy()), time.Minute)

	repo.after = func() {
		_, err := f.downtime.OpenDowntime(ctx, asset.ID, "Power failure", nil)
		require.NoError(t, err)
	}
	stale, err := alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, 0, stale.OpenDowntimeCount)

	fresh, err := alerts.GetSummary(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.OpenDowntimeCount)
	assert.Equal(t, 1, fresh.ByStatus[constants.StatusDown])
}

func TestGetSummary_RequiresBranch(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	_, err := f.alerts.GetSummary(context.Background(), " ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestExportAlerts_Workbook(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("AMC-1", "Analyzer", constants.CategoryGeneral)
	p.AmcValidTo = types.SetTo(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)
	_, err = f.downtime.OpenDowntime(ctx, res.Asset.ID, "Calibration lost", nil)
	require.NoError(t, err)

	book, err := f.alerts.ExportAlerts(ctx, "B1", nil)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"ТО", "AMC", "Гарантия", "Лицензии", "Простои"}, book.GetSheetList())

	code, err := book.GetCellValue("AMC", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AMC-1", code)

	reason, err := book.GetCellValue("Простои", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Calibration lost", reason)
}
