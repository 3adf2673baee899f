package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-register/internal/dto"
	"equipment-register/internal/entities"
	"equipment-register/internal/services"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/utils"
)

const mutationTimeoutSeconds = 10

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{equipmentService: service, logger: logger}
}

func (c *EquipmentController) ListAssets(ctx echo.Context) error {
	filter, err := parseEquipmentFilter(ctx.QueryParams())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	list, total, err := c.equipmentService.ListAssets(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.EquipmentDefaultPageSize
	}
	if pageSize > constants.EquipmentMaxPageSize {
		pageSize = constants.EquipmentMaxPageSize
	}
	return utils.SuccessList(ctx, dto.EquipmentListToDTO(list), "Список оборудования успешно получен", total, page, pageSize)
}

func (c *EquipmentController) GetAsset(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	asset, err := c.equipmentService.GetAsset(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.EquipmentToDTO(asset, nil), "Оборудование успешно получено", http.StatusOK)
}

func (c *EquipmentController) ListDowntime(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	tickets, err := c.equipmentService.ListDowntime(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.DowntimeTicketsToDTO(tickets), "История простоев успешно получена", http.StatusOK)
}

func (c *EquipmentController) RegisterAsset(ctx echo.Context) error {
	var req dto.CreateEquipmentDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.ContextWithTimeout(ctx, mutationTimeoutSeconds)
	defer cancel()

	res, err := c.equipmentService.RegisterAsset(reqCtx, req.BranchID, req.ToPatch())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.EquipmentToDTO(res.Asset, res.Warnings), "Оборудование успешно зарегистрировано", http.StatusCreated)
}

func (c *EquipmentController) UpdateAsset(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var req dto.UpdateEquipmentDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.ContextWithTimeout(ctx, mutationTimeoutSeconds)
	defer cancel()

	res, err := c.equipmentService.UpdateAsset(reqCtx, id, req.ToPatch())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.EquipmentToDTO(res.Asset, res.Warnings), "Оборудование успешно обновлено", http.StatusOK)
}

func (c *EquipmentController) RetireAsset(ctx echo.Context) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.ContextWithTimeout(ctx, mutationTimeoutSeconds)
	defer cancel()

	res, err := c.equipmentService.RetireAsset(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.EquipmentToDTO(res.Asset, res.Warnings), "Оборудование списано", http.StatusOK)
}

func parseUUIDParam(ctx echo.Context, name string) (uuid.UUID, error) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, map[string]interface{}{"param": raw})
	}
	return id, nil
}

func parseEquipmentFilter(q url.Values) (entities.EquipmentFilter, error) {
	filter := entities.EquipmentFilter{
		BranchID:          strings.TrimSpace(q.Get("branchId")),
		Search:            strings.TrimSpace(q.Get("q")),
		OwnerDepartmentID: utils.QueryString(q, "ownerDepartmentId"),
		UnitID:            utils.QueryString(q, "unitId"),
		RoomID:            utils.QueryString(q, "roomId"),
		LocationNodeID:    utils.QueryString(q, "locationNodeId"),
	}
	if v := utils.QueryString(q, "category"); v != nil {
		category := constants.EquipmentCategory(strings.ToUpper(*v))
		filter.Category = &category
	}
	if v := utils.QueryString(q, "operationalStatus"); v != nil {
		status := constants.OperationalStatus(strings.ToUpper(*v))
		filter.OperationalStatus = &status
	}

	ints := []struct {
		key string
		dst **int
	}{
		{"pmDueInDays", &filter.PmDueInDays},
		{"amcExpiringInDays", &filter.AmcExpiringInDays},
		{"warrantyExpiringInDays", &filter.WarrantyExpiringInDays},
		{"complianceExpiringInDays", &filter.ComplianceExpiringInDays},
	}
	for _, it := range ints {
		v, err := utils.QueryInt(q, it.key)
		if err != nil {
			return filter, err
		}
		*it.dst = v
	}

	page, err := utils.QueryInt(q, "page")
	if err != nil {
		return filter, err
	}
	pageSize, err := utils.QueryInt(q, "pageSize")
	if err != nil {
		return filter, err
	}
	filter.Page = utils.SafeDeref(page)
	filter.PageSize = utils.SafeDeref(pageSize)
	return filter, nil
}
