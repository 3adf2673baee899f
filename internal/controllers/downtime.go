package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-register/internal/dto"
	"equipment-register/internal/services"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/utils"
)

type DowntimeController struct {
	downtimeService services.DowntimeServiceInterface
	logger          *zap.Logger
}

func NewDowntimeController(service services.DowntimeServiceInterface, logger *zap.Logger) *DowntimeController {
	return &DowntimeController{downtimeService: service, logger: logger}
}

func (c *DowntimeController) OpenDowntime(ctx echo.Context) error {
	var req dto.OpenDowntimeDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assetID := uuid.MustParse(req.AssetID)

	reqCtx, cancel := utils.ContextWithTimeout(ctx, mutationTimeoutSeconds)
	defer cancel()

	ticket, err := c.downtimeService.OpenDowntime(reqCtx, assetID, req.Reason, req.Notes)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.DowntimeTicketToDTO(ticket), "Простой открыт", http.StatusCreated)
}

func (c *DowntimeController) CloseDowntime(ctx echo.Context) error {
	var req dto.CloseDowntimeDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	ticketID := uuid.MustParse(req.TicketID)

	reqCtx, cancel := utils.ContextWithTimeout(ctx, mutationTimeoutSeconds)
	defer cancel()

	ticket, err := c.downtimeService.CloseDowntime(reqCtx, ticketID, req.Notes)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.DowntimeTicketToDTO(ticket), "Простой закрыт", http.StatusOK)
}
