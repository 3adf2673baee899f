package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipment-register/internal/entities"
	"equipment-register/internal/repositories"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/utils"
)

type DowntimeServiceInterface interface {
	OpenDowntime(ctx context.Context, assetID uuid.UUID, reason string, notes *string) (*entities.DowntimeTicket, error)
	CloseDowntime(ctx context.Context, ticketID uuid.UUID, notes *string) (*entities.DowntimeTicket, error)
}

// DowntimeService - единственный, кто пишет переход OPERATIONAL <-> DOWN.
type DowntimeService struct {
	*BaseService
	repo repositories.EquipmentRepositoryInterface
}

func NewDowntimeService(base *BaseService, repo repositories.EquipmentRepositoryInterface) DowntimeServiceInterface {
	return &DowntimeService{BaseService: base, repo: repo}
}

// OpenDowntime открывает тикет и переводит оборудование в DOWN (в том числе из MAINTENANCE).
// Признак планирования не меняется.
func (s *DowntimeService) OpenDowntime(ctx context.Context, assetID uuid.UUID, reason string, notes *string) (*entities.DowntimeTicket, error) {
	now := s.Now()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reason", "обязательное поле")
	}
	if utf8.RuneCountInString(reason) > constants.DowntimeReasonMaxLen {
		return nil, apperrors.NewValidationError("reason", "не длиннее %d символов", constants.DowntimeReasonMaxLen)
	}

	var (
		asset  *entities.EquipmentAsset
		ticket *entities.DowntimeTicket
	)
	err := s.repo.RunInTransaction(ctx, func(tx repositories.EquipmentTxRepository) error {
		var err error
		asset, err = tx.LockAsset(ctx, assetID)
		if err != nil {
			return err
		}
		if !constants.CanOpenDowntime(asset.OperationalStatus) {
			return apperrors.NewInvalidStateError("оборудование списано, открыть простой нельзя")
		}

		_, err = tx.FindOpenTicket(ctx, assetID)
		if err == nil {
			return apperrors.NewInvalidStateError("по оборудованию уже открыт простой")
		}
		if !errors.Is(err, apperrors.ErrTicketNotFound) {
			return err
		}

		ticket = &entities.DowntimeTicket{
			ID:       uuid.New(),
			AssetID:  assetID,
			Status:   constants.DowntimeOpen,
			Reason:   reason,
			Notes:    utils.TrimmedPtr(notes),
			OpenedAt: now,
		}
		if err := tx.InsertTicket(ctx, ticket); err != nil {
			return err
		}

		asset.OperationalStatus = constants.StatusDown
		asset.UpdatedAt = &now
		if err := tx.SaveAsset(ctx, asset); err != nil {
			return err
		}
		return tx.InsertAudit(ctx, ticketAudit(asset, ticket, constants.AuditEquipmentDowntimeOpen, now, map[string]interface{}{
			"reason": reason,
		}))
	})
	if err != nil {
		if apperrors.IsInvalidState(err) {
			s.logger.Warn("Простой не открыт", zap.String("asset_id", assetID.String()), zap.Error(err))
		} else {
			s.logger.Error("Ошибка при открытии простоя", zap.String("asset_id", assetID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.afterTicketChange(ctx, asset, ticket, "opened", now)
	s.logger.Info("Простой открыт",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("asset_id", assetID.String()),
		zap.String("branch_id", asset.BranchID),
	)
	return ticket, nil
}

// CloseDowntime закрывает открытый тикет, дописывая заметки к уже существующим.
// Закрытый или несуществующий тикет - NotFound.
func (s *DowntimeService) CloseDowntime(ctx context.Context, ticketID uuid.UUID, notes *string) (*entities.DowntimeTicket, error) {
	now := s.Now()

	var (
		asset  *entities.EquipmentAsset
		ticket *entities.DowntimeTicket
	)
	err := s.repo.RunInTransaction(ctx, func(tx repositories.EquipmentTxRepository) error {
		var err error
		ticket, err = tx.LockTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if !ticket.IsOpen() {
			return fmt.Errorf("тикет %s уже закрыт: %w", ticketID, apperrors.ErrTicketNotFound)
		}
		asset, err = tx.LockAsset(ctx, ticket.AssetID)
		if err != nil {
			return err
		}
		if asset.IsRetired() {
			return apperrors.NewInvalidStateError("оборудование списано, закрытие простоя недоступно")
		}

		ticket.Close(now, strings.TrimSpace(utils.SafeDeref(notes)))
		if err := tx.SaveTicket(ctx, ticket); err != nil {
			return err
		}

		open, err := tx.CountOpenTickets(ctx, asset.ID)
		if err != nil {
			return err
		}
		if open == 0 {
			asset.OperationalStatus = constants.StatusOperational
			asset.UpdatedAt = &now
			if err := tx.SaveAsset(ctx, asset); err != nil {
				return err
			}
		}
		return tx.InsertAudit(ctx, ticketAudit(asset, ticket, constants.AuditEquipmentDowntimeClose, now, nil))
	})
	if err != nil {
		s.logger.Error("Ошибка при закрытии простоя", zap.String("ticket_id", ticketID.String()), zap.Error(err))
		return nil, err
	}

	s.afterTicketChange(ctx, asset, ticket, "closed", now)
	s.logger.Info("Простой закрыт",
		zap.String("ticket_id", ticketID.String()),
		zap.String("asset_id", asset.ID.String()),
		zap.String("branch_id", asset.BranchID),
	)
	return ticket, nil
}
