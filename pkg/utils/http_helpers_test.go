package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "equipment-register/pkg/errors"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorResponse_DomainMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperrors.NewValidationError("code", "пустой код"), http.StatusBadRequest},
		{"compliance", apperrors.NewComplianceViolation("GENERAL", "aerb_license_no", "запрещено"), http.StatusUnprocessableEntity},
		{"invalid state", apperrors.NewInvalidStateError("уже открыт"), http.StatusConflict},
		{"not found", fmt.Errorf("get: %w", apperrors.ErrAssetNotFound), http.StatusNotFound},
		{"wrapped in http error", apperrors.NewHttpError(http.StatusBadRequest, "bad", apperrors.NewInvalidStateError("x"), nil), http.StatusConflict},
		{"plain http error", apperrors.NewBadRequestError("Неверный ID"), http.StatusBadRequest},
		{"storage fault", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			code, body := respond(t, tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, false, body["status"])
		})
	}
}

func TestErrorResponse_ComplianceBody(t *testing.T) {
	_, body := respond(t, apperrors.NewComplianceViolation("GENERAL", "aerb_license_no", "запрещено"))
	details, ok := body["body"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "COMPLIANCE_VIOLATION", details["error"])
	assert.Equal(t, "aerb_license_no", details["field"])
}

func TestQueryInt(t *testing.T) {
	v, err := QueryInt(url.Values{"withinDays": {"45"}}, "withinDays")
	require.NoError(t, err)
	assert.Equal(t, 45, *v)

	v, err = QueryInt(url.Values{}, "withinDays")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = QueryInt(url.Values{"withinDays": {"abc"}}, "withinDays")
	assert.True(t, apperrors.IsValidation(err))
}
