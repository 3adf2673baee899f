package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/utils"
	appwebsocket "equipment-register/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketController struct {
	hub    *appwebsocket.Hub
	logger *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{hub: hub, logger: logger}
}

// ServeWs подписывает дашборд на события филиала (?branchId=).
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	branchID := strings.TrimSpace(ctx.QueryParam("branchId"))
	if branchID == "" {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("branchId", "обязательный параметр"), c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(c.hub, conn, branchID)
	c.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен", zap.String("branch_id", branchID))
	return nil
}
