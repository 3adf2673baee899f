package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "equipment-register/pkg/errors"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// SuccessList - список с метаданными пагинации.
func SuccessList(ctx echo.Context, list interface{}, message string, total uint64, page, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + uint64(pageSize) - 1) / uint64(pageSize))
	}
	body := map[string]interface{}{
		"list": list,
		"pagination": PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			PageSize:   pageSize,
		},
	}
	return ctx.JSON(http.StatusOK, &HTTPResponse{Status: true, Body: body, Message: message})
}

// ErrorResponse переводит ошибки домена в HTTP-ответ. Ошибки хранилища
// логируются и отдаются как 500 без подробностей.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil && httpErr.Code >= http.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		if httpErr.Err != nil && httpErr.Code < http.StatusInternalServerError {
			if resp, ok := domainError(httpErr.Err); ok {
				return c.JSON(resp.code, resp.body)
			}
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	if resp, ok := domainError(err); ok {
		return c.JSON(resp.code, resp.body)
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}

type errorBody struct {
	code int
	body map[string]interface{}
}

func domainError(err error) (errorBody, bool) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return errorBody{http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "Ошибка валидации: " + strings.Join(msgs, "; "),
		}}, true
	}

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return errorBody{http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": vErr.Error(),
			"body":    map[string]string{"error": "VALIDATION", "field": vErr.Field},
		}}, true
	}

	var cErr *apperrors.ComplianceViolationError
	if errors.As(err, &cErr) {
		return errorBody{http.StatusUnprocessableEntity, map[string]interface{}{
			"status":  false,
			"message": cErr.Error(),
			"body":    map[string]string{"error": "COMPLIANCE_VIOLATION", "category": cErr.Category, "field": cErr.Field},
		}}, true
	}

	var sErr *apperrors.InvalidStateError
	if errors.As(err, &sErr) {
		return errorBody{http.StatusConflict, map[string]interface{}{
			"status":  false,
			"message": sErr.Error(),
			"body":    map[string]string{"error": "INVALID_STATE"},
		}}, true
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		return errorBody{http.StatusNotFound, map[string]interface{}{
			"status":  false,
			"message": err.Error(),
			"body":    map[string]string{"error": "NOT_FOUND"},
		}}, true
	}
	return errorBody{}, false
}

// QueryInt читает необязательный целочисленный параметр запроса.
func QueryInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(key, "ожидается целое число, получено %q", raw)
	}
	return &v, nil
}

// QueryString читает необязательный строковый параметр запроса.
func QueryString(values url.Values, key string) *string {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}
