package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipment-register/internal/compliance"
	"equipment-register/internal/entities"
	"equipment-register/internal/events"
	"equipment-register/internal/repositories"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/types"
	"equipment-register/pkg/utils"
)

// AssetResult - оборудование после записи и предупреждения шлюза соответствия.
type AssetResult struct {
	Asset    *entities.EquipmentAsset
	Warnings []string
}

type EquipmentServiceInterface interface {
	RegisterAsset(ctx context.Context, branchID string, patch entities.EquipmentPatch) (*AssetResult, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, patch entities.EquipmentPatch) (*AssetResult, error)
	RetireAsset(ctx context.Context, id uuid.UUID) (*AssetResult, error)
	GetAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error)
	ListAssets(ctx context.Context, filter entities.EquipmentFilter) ([]entities.EquipmentAsset, uint64, error)
	ListDowntime(ctx context.Context, assetID uuid.UUID) ([]entities.DowntimeTicket, error)
}

type EquipmentService struct {
	*BaseService
	repo repositories.EquipmentRepositoryInterface
	gate *compliance.Gate
}

func NewEquipmentService(
	base *BaseService,
	repo repositories.EquipmentRepositoryInterface,
	gate *compliance.Gate,
) EquipmentServiceInterface {
	return &EquipmentService{BaseService: base, repo: repo, gate: gate}
}

func (s *EquipmentService) RegisterAsset(ctx context.Context, branchID string, p entities.EquipmentPatch) (*AssetResult, error) {
	now := s.Now()

	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, apperrors.NewValidationError("branch_id", "обязательное поле")
	}
	code := ""
	if p.Code.Value != nil {
		code = utils.CanonicalizeCode(*p.Code.Value)
	}
	if code == "" {
		return nil, apperrors.NewValidationError("code", "обязательное поле")
	}

	category := constants.CategoryGeneral
	if p.Category.Value != nil {
		category = *p.Category.Value
	}

	asset := &entities.EquipmentAsset{
		ID:                uuid.New(),
		BranchID:          branchID,
		Code:              code,
		OperationalStatus: constants.StatusOperational,
	}
	if p.OperationalStatus.Value != nil {
		status := *p.OperationalStatus.Value
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("operational_status", "неизвестный статус %q", status)
		}
		if status == constants.StatusDown {
			return nil, apperrors.NewValidationError("operational_status", "статус DOWN выставляется только открытием простоя")
		}
		asset.OperationalStatus = status
	}

	comp, err := s.gate.Build(category, entities.ComplianceFields{
		AerbLicenseNo: p.AerbLicenseNo.Value,
		AerbValidTo:   p.AerbValidTo.Value,
		PcpndtRegNo:   p.PcpndtRegNo.Value,
		PcpndtValidTo: p.PcpndtValidTo.Value,
	})
	if err != nil {
		return nil, err
	}
	asset.Compliance = comp

	applyPatch(asset, p)
	derivePmDue(asset, now)
	if asset.IsRetired() {
		asset.IsSchedulable = false
	}
	if err := validateAsset(asset); err != nil {
		return nil, err
	}
	warnings, err := s.gate.Validate(asset, now)
	if err != nil {
		return nil, err
	}
	asset.CreatedAt = &now
	asset.UpdatedAt = &now

	err = s.repo.RunInTransaction(ctx, func(tx repositories.EquipmentTxRepository) error {
		exists, err := tx.CodeExists(ctx, branchID, code)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewValidationError("code", "код %q уже используется в филиале", code)
		}
		if err := tx.InsertAsset(ctx, asset); err != nil {
			return err
		}
		return tx.InsertAudit(ctx, assetAudit(asset, constants.AuditEquipmentCreate, now, map[string]interface{}{
			"code":     asset.Code,
			"category": asset.Category(),
			"warnings": warnings,
		}))
	})
	if err != nil {
		s.logger.Error("Ошибка при регистрации оборудования", zap.String("branch_id", branchID), zap.String("code", code), zap.Error(err))
		return nil, err
	}

	s.afterAssetChange(ctx, asset, "created", warnings, now)
	s.logger.Info("Оборудование зарегистрировано", zap.String("asset_id", asset.ID.String()), zap.String("branch_id", branchID), zap.String("code", code))
	return &AssetResult{Asset: asset, Warnings: warnings}, nil
}

func (s *EquipmentService) UpdateAsset(ctx context.Context, id uuid.UUID, p entities.EquipmentPatch) (*AssetResult, error) {
	now := s.Now()

	var (
		asset    *entities.EquipmentAsset
		warnings []string
		closed   *entities.DowntimeTicket
		retiring bool
	)
	err := s.repo.RunInTransaction(ctx, func(tx repositories.EquipmentTxRepository) error {
		var err error
		asset, err = tx.LockAsset(ctx, id)
		if err != nil {
			return err
		}

		if p.Code.Set {
			if p.Code.Value == nil || utils.CanonicalizeCode(*p.Code.Value) != asset.Code {
				return apperrors.NewValidationError("code", "код оборудования нельзя изменить")
			}
		}

		target, err := s.targetStatus(asset, p.OperationalStatus)
		if err != nil {
			return err
		}
		retiring = target == constants.StatusRetired && !asset.IsRetired()

		category := asset.Category()
		if p.Category.Set {
			if p.Category.Value == nil {
				return apperrors.NewValidationError("category", "обязательное поле")
			}
			category = *p.Category.Value
		}
		comp, err := s.gate.Merge(asset.Compliance, category, p)
		if err != nil {
			return err
		}
		asset.Compliance = comp

		applyPatch(asset, p)
		if p.PmFrequencyDays.Set || p.NextPmDueAt.Set {
			derivePmDue(asset, now)
		}

		if retiring {
			if closed, err = retireInTx(ctx, tx, asset, now); err != nil {
				return err
			}
		} else {
			asset.OperationalStatus = target
		}
		if asset.IsRetired() {
			asset.IsSchedulable = false
		}

		if err := validateAsset(asset); err != nil {
			return err
		}
		if warnings, err = s.gate.Validate(asset, now); err != nil {
			return err
		}

		asset.UpdatedAt = &now
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}
		action := constants.AuditEquipmentUpdate
		if retiring {
			action = constants.AuditEquipmentRetire
		}
		return tx.InsertAudit(ctx, assetAudit(asset, action, now, map[string]interface{}{
			"fields":   patchedFields(p),
			"warnings": warnings,
		}))
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении оборудования", zap.String("asset_id", id.String()), zap.Error(err))
		return nil, err
	}

	action := "updated"
	if retiring {
		action = "retired"
	}
	s.afterAssetChange(ctx, asset, action, warnings, now)
	if closed != nil {
		s.afterTicketChange(ctx, asset, closed, "closed", now)
	}
	s.logger.Info("Оборудование обновлено", zap.String("asset_id", id.String()), zap.String("branch_id", asset.BranchID))
	return &AssetResult{Asset: asset, Warnings: warnings}, nil
}

// RetireAsset списывает оборудование. Повторное списание - успешный no-op.
func (s *EquipmentService) RetireAsset(ctx context.Context, id uuid.UUID) (*AssetResult, error) {
	now := s.Now()

	var (
		asset  *entities.EquipmentAsset
		closed *entities.DowntimeTicket
		noop   bool
	)
	err := s.repo.RunInTransaction(ctx, func(tx repositories.EquipmentTxRepository) error {
		var err error
		asset, err = tx.LockAsset(ctx, id)
		if err != nil {
			return err
		}
		if asset.IsRetired() {
			noop = true
			return nil
		}
		if closed, err = retireInTx(ctx, tx, asset, now); err != nil {
			return err
		}
		asset.UpdatedAt = &now
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}
		meta := map[string]interface{}{}
		if closed != nil {
			meta["closed_ticket_id"] = closed.ID.String()
		}
		return tx.InsertAudit(ctx, assetAudit(asset, constants.AuditEquipmentRetire, now, meta))
	})
	if err != nil {
		s.logger.Error("Ошибка при списании оборудования", zap.String("asset_id", id.String()), zap.Error(err))
		return nil, err
	}
	if noop {
		s.logger.Debug("Оборудование уже списано", zap.String("asset_id", id.String()))
		return &AssetResult{Asset: asset}, nil
	}

	s.afterAssetChange(ctx, asset, "retired", nil, now)
	if closed != nil {
		s.afterTicketChange(ctx, asset, closed, "closed", now)
	}
	s.logger.Info("Оборудование списано", zap.String("asset_id", id.String()), zap.String("branch_id", asset.BranchID))
	return &AssetResult{Asset: asset}, nil
}

func (s *EquipmentService) GetAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error) {
	asset, err := s.repo.FindAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	tickets, err := s.repo.ListTickets(ctx, id, constants.EquipmentTicketsOnGet)
	if err != nil {
		return nil, err
	}
	asset.Tickets = tickets
	return asset, nil
}

func (s *EquipmentService) ListAssets(ctx context.Context, filter entities.EquipmentFilter) ([]entities.EquipmentAsset, uint64, error) {
	filter.BranchID = strings.TrimSpace(filter.BranchID)
	if filter.BranchID == "" {
		return nil, 0, apperrors.NewValidationError("branch_id", "обязательное поле")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = constants.EquipmentDefaultPageSize
	}
	if filter.PageSize > constants.EquipmentMaxPageSize {
		filter.PageSize = constants.EquipmentMaxPageSize
	}
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, 0, apperrors.NewValidationError("category", "неизвестная категория %q", *filter.Category)
	}
	if filter.OperationalStatus != nil && !filter.OperationalStatus.IsValid() {
		return nil, 0, apperrors.NewValidationError("operational_status", "неизвестный статус %q", *filter.OperationalStatus)
	}
	if filter.Now.IsZero() {
		filter.Now = s.Now()
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListAssets(ctx, filter)
}

// ListDowntime - вся история простоев оборудования, новые первыми.
func (s *EquipmentService) ListDowntime(ctx context.Context, assetID uuid.UUID) ([]entities.DowntimeTicket, error) {
	if _, err := s.repo.FindAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return s.repo.ListTickets(ctx, assetID, 0)
}

// targetStatus проверяет ручную смену статуса по таблице переходов.
func (s *EquipmentService) targetStatus(asset *entities.EquipmentAsset, f types.Field[constants.OperationalStatus]) (constants.OperationalStatus, error) {
	if !f.Set {
		return asset.OperationalStatus, nil
	}
	if f.Value == nil {
		return "", apperrors.NewValidationError("operational_status", "обязательное поле")
	}
	to := *f.Value
	if !to.IsValid() {
		return "", apperrors.NewValidationError("operational_status", "неизвестный статус %q", to)
	}
	from := asset.OperationalStatus
	switch {
	case from == to:
		return to, nil
	case from.IsFinal():
		return "", apperrors.NewInvalidStateError("оборудование списано, смена статуса невозможна")
	case to == constants.StatusDown:
		return "", apperrors.NewInvalidStateError("статус DOWN выставляется только открытием простоя")
	case from == constants.StatusDown && to != constants.StatusRetired:
		return "", apperrors.NewInvalidStateError("оборудование в простое: сначала закройте тикет простоя")
	case !constants.CanTransitionManually(from, to):
		return "", apperrors.NewInvalidStateError("переход %s -> %s недопустим", from, to)
	}
	return to, nil
}

// retireInTx переводит оборудование в RETIRED и принудительно закрывает
// открытый тикет простоя с системной пометкой.
func retireInTx(ctx context.Context, tx repositories.EquipmentTxRepository, asset *entities.EquipmentAsset, now time.Time) (*entities.DowntimeTicket, error) {
	var closed *entities.DowntimeTicket
	open, err := tx.FindOpenTicket(ctx, asset.ID)
	switch {
	case err == nil:
		open.Close(now, constants.DowntimeRetiredNote)
		if err := tx.SaveTicket(ctx, open); err != nil {
			return nil, err
		}
		if err := tx.InsertAudit(ctx, ticketAudit(asset, open, constants.AuditEquipmentDowntimeClose, now, map[string]interface{}{
			"forced": true,
		})); err != nil {
			return nil, err
		}
		closed = open
	case !errors.Is(err, apperrors.ErrTicketNotFound):
		return nil, err
	}
	asset.OperationalStatus = constants.StatusRetired
	asset.IsSchedulable = false
	return closed, nil
}

func applyPatch(asset *entities.EquipmentAsset, p entities.EquipmentPatch) {
	if p.Name.Set {
		asset.Name = ""
		if p.Name.Value != nil {
			asset.Name = strings.TrimSpace(*p.Name.Value)
		}
	}
	applyText(&asset.Make, p.Make)
	applyText(&asset.Model, p.Model)
	applyText(&asset.Serial, p.Serial)

	applyText(&asset.OwnerDepartmentID, p.OwnerDepartmentID)
	applyText(&asset.UnitID, p.UnitID)
	applyText(&asset.RoomID, p.RoomID)
	applyText(&asset.LocationNodeID, p.LocationNodeID)

	if p.IsSchedulable.Set {
		asset.IsSchedulable = p.IsSchedulable.Value != nil && *p.IsSchedulable.Value
	}

	applyText(&asset.AmcVendor, p.AmcVendor)
	p.AmcValidFrom.Apply(&asset.AmcValidFrom)
	p.AmcValidTo.Apply(&asset.AmcValidTo)
	p.WarrantyValidTo.Apply(&asset.WarrantyValidTo)
	p.PmFrequencyDays.Apply(&asset.PmFrequencyDays)
	p.NextPmDueAt.Apply(&asset.NextPmDueAt)
}

func applyText(dst **string, f types.Field[string]) {
	if f.Set {
		*dst = utils.TrimmedPtr(f.Value)
	}
}

// derivePmDue: есть периодичность ТО, но нет даты - следующее ТО через период от now.
func derivePmDue(asset *entities.EquipmentAsset, now time.Time) {
	if asset.PmFrequencyDays == nil || asset.NextPmDueAt != nil || *asset.PmFrequencyDays < 1 {
		return
	}
	due := now.AddDate(0, 0, *asset.PmFrequencyDays)
	asset.NextPmDueAt = &due
}

func validateAsset(asset *entities.EquipmentAsset) error {
	if asset.Name == "" {
		return apperrors.NewValidationError("name", "обязательное поле")
	}
	if utf8.RuneCountInString(asset.Name) > constants.EquipmentNameMaxLen {
		return apperrors.NewValidationError("name", "не длиннее %d символов", constants.EquipmentNameMaxLen)
	}
	if asset.PmFrequencyDays != nil && *asset.PmFrequencyDays < 1 {
		return apperrors.NewValidationError("pm_frequency_days", "должно быть не меньше 1")
	}
	if asset.AmcValidFrom != nil && asset.AmcValidTo != nil && asset.AmcValidTo.Before(*asset.AmcValidFrom) {
		return apperrors.NewValidationError("amc_valid_to", "окончание AMC раньше начала")
	}
	if asset.RoomID != nil && asset.UnitID == nil {
		return apperrors.NewValidationError("room_id", "помещение указывается только вместе с отделением")
	}
	return nil
}

func patchedFields(p entities.EquipmentPatch) []string {
	fields := make([]string, 0)
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.Name.Set, "name")
	add(p.Category.Set, "category")
	add(p.Make.Set, "make")
	add(p.Model.Set, "model")
	add(p.Serial.Set, "serial")
	add(p.OwnerDepartmentID.Set, "owner_department_id")
	add(p.UnitID.Set, "unit_id")
	add(p.RoomID.Set, "room_id")
	add(p.LocationNodeID.Set, "location_node_id")
	add(p.OperationalStatus.Set, "operational_status")
	add(p.IsSchedulable.Set, "is_schedulable")
	add(p.AmcVendor.Set, "amc_vendor")
	add(p.AmcValidFrom.Set, "amc_valid_from")
	add(p.AmcValidTo.Set, "amc_valid_to")
	add(p.WarrantyValidTo.Set, "warranty_valid_to")
	add(p.PmFrequencyDays.Set, "pm_frequency_days")
	add(p.NextPmDueAt.Set, "next_pm_due_at")
	add(p.AerbLicenseNo.Set, "aerb_license_no")
	add(p.AerbValidTo.Set, "aerb_valid_to")
	add(p.PcpndtRegNo.Set, "pcpndt_reg_no")
	add(p.PcpndtValidTo.Set, "pcpndt_valid_to")
	return fields
}

func assetAudit(asset *entities.EquipmentAsset, action string, now time.Time, meta map[string]interface{}) *entities.EquipmentAuditEntry {
	return &entities.EquipmentAuditEntry{
		BranchID:  asset.BranchID,
		Action:    action,
		Entity:    constants.AuditEntityEquipmentAsset,
		EntityID:  asset.ID,
		Meta:      meta,
		CreatedAt: now,
	}
}

func ticketAudit(asset *entities.EquipmentAsset, ticket *entities.DowntimeTicket, action string, now time.Time, meta map[string]interface{}) *entities.EquipmentAuditEntry {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["asset_id"] = asset.ID.String()
	return &entities.EquipmentAuditEntry{
		BranchID:  asset.BranchID,
		Action:    action,
		Entity:    constants.AuditEntityDowntimeTicket,
		EntityID:  ticket.ID,
		Meta:      meta,
		CreatedAt: now,
	}
}

func (s *BaseService) afterAssetChange(ctx context.Context, asset *entities.EquipmentAsset, action string, warnings []string, now time.Time) {
	s.InvalidateSummary(ctx, asset.BranchID)
	s.Publish(ctx, events.EquipmentChangedEvent{
		BranchID:    asset.BranchID,
		Action:      action,
		Asset:       asset.Ref(),
		Status:      asset.OperationalStatus,
		Schedulable: asset.IsSchedulable,
		Warnings:    warnings,
		OccurredAt:  now,
	})
}

func (s *BaseService) afterTicketChange(ctx context.Context, asset *entities.EquipmentAsset, ticket *entities.DowntimeTicket, action string, now time.Time) {
	s.InvalidateSummary(ctx, asset.BranchID)
	s.Publish(ctx, events.DowntimeChangedEvent{
		BranchID:   asset.BranchID,
		Action:     action,
		TicketID:   ticket.ID,
		Asset:      asset.Ref(),
		Status:     asset.OperationalStatus,
		OccurredAt: now,
	})
}
