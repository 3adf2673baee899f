package services

import (
	"context"

	"go.uber.org/zap"

	"equipment-register/pkg/websocket"
)

// Интерфейс, чтобы можно было легко подменять в тестах
type WebSocketNotificationServiceInterface interface {
	SendToBranch(ctx context.Context, branchID string, payload interface{}, messageType string) error
}

type WebSocketNotificationService struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketNotificationService(hub *websocket.Hub, logger *zap.Logger) WebSocketNotificationServiceInterface {
	return &WebSocketNotificationService{
		hub:    hub,
		logger: logger,
	}
}

func (s *WebSocketNotificationService) SendToBranch(ctx context.Context, branchID string, payload interface{}, messageType string) error {
	s.logger.Debug("Отправка WebSocket-уведомления",
		zap.String("branch_id", branchID),
		zap.String("type", messageType),
	)
	return s.hub.SendToBranch(ctx, branchID, messageType, payload)
}
