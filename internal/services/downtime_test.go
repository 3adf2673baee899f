package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-register/internal/compliance"
	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
)

func registerGeneral(t *testing.T, f *fixture, code string) *entities.EquipmentAsset {
	t.Helper()
	res, err := f.equipment.RegisterAsset(context.Background(), "B1", basePatch(code, "Asset "+code, constants.CategoryGeneral))
	require.NoError(t, err)
	return res.Asset
}

func TestDowntime_RoundTrip(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	asset := registerGeneral(t, f, "DT-1")

	notes := "  сгорел блок питания "
	ticket, err := f.downtime.OpenDowntime(ctx, asset.ID, "Power failure", &notes)
	require.NoError(t, err)
	assert.Equal(t, constants.DowntimeOpen, ticket.Status)
	assert.Equal(t, f.clock.Now(), ticket.OpenedAt)

	got, err := f.equipment.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusDown, got.OperationalStatus)
	require.Len(t, got.Tickets, 1)

	closeNotes := "заменен"
	closed, err := f.downtime.CloseDowntime(ctx, ticket.ID, &closeNotes)
	require.NoError(t, err)
	assert.Equal(t, constants.DowntimeClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, "сгорел блок питания\nзаменен", *closed.Notes)

	got, err = f.equipment.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusOperational, got.OperationalStatus)

	_, err = f.downtime.CloseDowntime(ctx, ticket.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.downtime.CloseDowntime(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDowntime_MaintenanceSupersededSchedulableUntouched(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()

	p := basePatch("DT-2", "Bed", constants.CategoryGeneral)
	p.IsSchedulable = types.SetTo(true)
	p.OperationalStatus = types.SetTo(constants.StatusMaintenance)
	res, err := f.equipment.RegisterAsset(ctx, "B1", p)
	require.NoError(t, err)

	_, err = f.downtime.OpenDowntime(ctx, res.Asset.ID, "Leak", nil)
	require.NoError(t, err)

	got, err := f.equipment.GetAsset(ctx, res.Asset.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusDown, got.OperationalStatus)
	assert.True(t, got.IsSchedulable)
}

func TestDowntime_Validation(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	asset := registerGeneral(t, f, "DT-3")

	_, err := f.downtime.OpenDowntime(ctx, asset.ID, "   ", nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.downtime.OpenDowntime(ctx, uuid.New(), "x", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.downtime.OpenDowntime(ctx, asset.ID, "first", nil)
	require.NoError(t, err)
	_, err = f.downtime.OpenDowntime(ctx, asset.ID, "second", nil)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDowntime_ConcurrentOpenExactlyOneWins(t *testing.T) {
	f := newFixture(compliance.ModeWarn)
	ctx := context.Background()
	asset := registerGeneral(t, f, "DT-4")

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.downtime.OpenDowntime(ctx, asset.ID, "Power failure", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperrors.IsInvalidState(err):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflict)

	tickets, err := f.equipment.ListDowntime(ctx, asset.ID)
	require.NoError(t, err)
	open := 0
	for _, tk := range tickets {
		if tk.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}
