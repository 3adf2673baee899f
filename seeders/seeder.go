package seeders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"equipment-register/internal/entities"
	"equipment-register/internal/services"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
)

// Result - итог сидирования филиала.
type Result struct {
	Created  int
	Skipped  int
	Downtime int
}

// SeedEquipment регистрирует демонстрационное оборудование филиала через сервисы,
// поэтому проходят все проверки и аудит. Уже существующие коды пропускаются.
func SeedEquipment(
	ctx context.Context,
	equipment services.EquipmentServiceInterface,
	downtime services.DowntimeServiceInterface,
	branchID string,
	now time.Time,
	logger *zap.Logger,
) (Result, error) {
	var res Result
	logger.Info("▶️  Наполнение оборудования", zap.String("branch_id", branchID))

	for _, seed := range equipmentData {
		created, err := equipment.RegisterAsset(ctx, branchID, seed.patch(now))
		if err != nil {
			var vErr *apperrors.ValidationError
			if errors.As(err, &vErr) && vErr.Field == "code" {
				logger.Info("  - уже есть, пропускаем", zap.String("code", seed.Code))
				res.Skipped++
				continue
			}
			if apperrors.IsComplianceViolation(err) {
				logger.Warn("  - отклонено политикой соответствия", zap.String("code", seed.Code), zap.Error(err))
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("регистрация %s: %w", seed.Code, err)
		}
		res.Created++
		for _, w := range created.Warnings {
			logger.Warn("  - предупреждение", zap.String("code", seed.Code), zap.String("warning", w))
		}

		if seed.DowntimeReason == "" {
			continue
		}
		if _, err := downtime.OpenDowntime(ctx, created.Asset.ID, seed.DowntimeReason, nil); err != nil {
			return res, fmt.Errorf("простой %s: %w", seed.Code, err)
		}
		res.Downtime++
	}

	logger.Info("✅ Наполнение оборудования завершено",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("downtime", res.Downtime),
	)
	return res, nil
}

func (s equipmentSeed) patch(now time.Time) entities.EquipmentPatch {
	p := entities.EquipmentPatch{
		Code:            types.SetTo(s.Code),
		Name:            types.SetTo(s.Name),
		Category:        types.SetTo(s.Category),
		IsSchedulable:   types.SetTo(s.Schedulable),
		Make:            text(s.Make),
		Model:           text(s.Model),
		UnitID:          text(s.UnitID),
		RoomID:          text(s.RoomID),
		AmcVendor:       text(s.AmcVendor),
		AerbLicenseNo:   text(s.AerbLicenseNo),
		PcpndtRegNo:     text(s.PcpndtRegNo),
		NextPmDueAt:     offset(now, s.NextPmInDays),
		AmcValidTo:      offset(now, s.AmcInDays),
		WarrantyValidTo: offset(now, s.WarrantyInDays),
		AerbValidTo:     offset(now, s.AerbInDays),
		PcpndtValidTo:   offset(now, s.PcpndtInDays),
	}
	if s.PmFrequencyDays > 0 {
		p.PmFrequencyDays = types.SetTo(s.PmFrequencyDays)
	}
	if s.AmcInDays != 0 {
		p.AmcValidFrom = types.SetTo(dayStart(now).AddDate(-1, 0, 0))
	}
	return p
}

func text(s string) types.Field[string] {
	if s == "" {
		return types.Field[string]{}
	}
	return types.SetTo(s)
}

func offset(now time.Time, days int) types.Field[time.Time] {
	if days == 0 {
		return types.Field[time.Time]{}
	}
	return types.SetTo(dayStart(now).AddDate(0, 0, days))
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
