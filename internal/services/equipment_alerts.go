package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/repositories"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
)

type EquipmentAlertsServiceInterface interface {
	GetSummary(ctx context.Context, branchID string) (*alerting.Summary, error)
	GetAlerts(ctx context.Context, branchID string, withinDays *int) (*alerting.Alerts, error)
	ExportAlerts(ctx context.Context, branchID string, withinDays *int) (*excelize.File, error)
}

// EquipmentAlertsService - чтение: сроки ТО, AMC, гарантии, лицензий и сводка филиала.
type EquipmentAlertsService struct {
	*BaseService
	repo      repositories.EquipmentRepositoryInterface
	projector *alerting.Projector
	cacheTTL  time.Duration
}

func NewEquipmentAlertsService(
	base *BaseService,
	repo repositories.EquipmentRepositoryInterface,
	projector *alerting.Projector,
	cacheTTL time.Duration,
) EquipmentAlertsServiceInterface {
	return &EquipmentAlertsService{BaseService: base, repo: repo, projector: projector, cacheTTL: cacheTTL}
}

func (s *EquipmentAlertsService) GetSummary(ctx context.Context, branchID string) (*alerting.Summary, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, apperrors.NewValidationError("branch_id", "обязательное поле")
	}

	var (
		key       string
		cacheable bool
	)
	if s.cacheTTL > 0 {
		var gen int64
		if gen, cacheable = s.SummaryGeneration(ctx, branchID); cacheable {
			key = summaryCacheKey(branchID, gen)
			var cached alerting.Summary
			if s.CacheGet(ctx, key, &cached) {
				return &cached, nil
			}
		}
	}

	snap, err := s.repo.BranchSnapshot(ctx, branchID)
	if err != nil {
		s.logger.Error("Не удалось получить срез филиала для сводки", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	summary := s.projector.Summary(*snap, s.Now())

	if cacheable {
		s.CacheSet(ctx, key, summary, s.cacheTTL)
	}
	return &summary, nil
}

func (s *EquipmentAlertsService) GetAlerts(ctx context.Context, branchID string, withinDays *int) (*alerting.Alerts, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, apperrors.NewValidationError("branch_id", "обязательное поле")
	}
	snap, err := s.repo.BranchSnapshot(ctx, branchID)
	if err != nil {
		s.logger.Error("Не удалось получить срез филиала для предупреждений", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	alerts := s.projector.Alerts(*snap, s.Now(), withinDays)
	return &alerts, nil
}

var alertHeaders = []interface{}{"Код", "Наименование", "Категория", "Статус", "Дата", "Дней до срока", "Уровень"}

// ExportAlerts собирает книгу XLSX: по листу на каждый список и лист открытых простоев.
func (s *EquipmentAlertsService) ExportAlerts(ctx context.Context, branchID string, withinDays *int) (*excelize.File, error) {
	alerts, err := s.GetAlerts(ctx, branchID, withinDays)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля XLSX: %w", err)
	}

	sheets := []struct {
		name  string
		items []alerting.AlertItem
	}{
		{"ТО", alerts.PmDue},
		{"AMC", alerts.AmcExpiring},
		{"Гарантия", alerts.WarrantyExpiring},
		{"Лицензии", alerts.ComplianceExpiring},
	}
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sh.name, "A1", &alertHeaders); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(sh.name, "A1", "G1", bold)
		for r, item := range sh.items {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			row := []interface{}{
				item.Asset.Code,
				item.Asset.Name,
				string(item.Asset.Category),
				string(item.Status),
				item.Date.Format(types.DateLayout),
				item.DaysUntil,
				string(item.Severity),
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return nil, err
			}
		}
		_ = f.SetColWidth(sh.name, "A", "A", 18)
		_ = f.SetColWidth(sh.name, "B", "B", 40)
		_ = f.SetColWidth(sh.name, "C", "G", 16)
	}

	const downtimeSheet = "Простои"
	if _, err := f.NewSheet(downtimeSheet); err != nil {
		return nil, err
	}
	downtimeHeaders := []interface{}{"Код", "Наименование", "Причина", "Открыт"}
	if err := f.SetSheetRow(downtimeSheet, "A1", &downtimeHeaders); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(downtimeSheet, "A1", "D1", bold)
	for r, od := range alerts.OpenDowntime {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		row := []interface{}{od.Asset.Code, od.Asset.Name, od.Ticket.Reason, od.Ticket.OpenedAt.Format(time.RFC3339)}
		if err := f.SetSheetRow(downtimeSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(downtimeSheet, "B", "C", 40)
	_ = f.SetColWidth(downtimeSheet, "D", "D", 24)

	s.logger.Info("Сформирован XLSX предупреждений по оборудованию",
		zap.String("branch_id", alerts.BranchID), zap.Int("within_days", alerts.WithinDays))
	return f, nil
}
