package seeders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-register/internal/compliance"
	"equipment-register/internal/entities"
	"equipment-register/internal/repositories/memory"
	"equipment-register/internal/services"
	"equipment-register/pkg/constants"
)

func TestSeedEquipment_Idempotent(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	repo := memory.NewEquipmentRepository()
	base := services.NewBaseService(nil, nil, zap.NewNop(), func() time.Time { return now })
	equipment := services.NewEquipmentService(base, repo, compliance.NewGate(compliance.DefaultPolicy()))
	downtime := services.NewDowntimeService(base, repo)
	ctx := context.Background()

	res, err := SeedEquipment(ctx, equipment, downtime, "B1", now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(equipmentData), res.Created)
	assert.Equal(t, 1, res.Downtime)

	res, err = SeedEquipment(ctx, equipment, downtime, "B1", now, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, len(equipmentData), res.Skipped)

	down := constants.StatusDown
	list, total, err := equipment.ListAssets(ctx, entities.EquipmentFilter{BranchID: "B1", OperationalStatus: &down})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "VENT-01", list[0].Code)
}

func TestSeedPatch_Offsets(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	p := equipmentData[0].patch(now)

	require.True(t, p.AerbValidTo.Set)
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), *p.AerbValidTo.Value)
	assert.False(t, p.PcpndtValidTo.Set)
	assert.False(t, p.Serial.Set)
}
