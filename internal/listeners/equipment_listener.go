package listeners

import (
	"context"

	"go.uber.org/zap"

	"equipment-register/internal/events"
	"equipment-register/internal/services"
	"equipment-register/pkg/eventbus"
)

// Типы сообщений WebSocket для дашборда оборудования.
const (
	MessageEquipmentChanged = "equipment.changed"
	MessageDowntimeChanged  = "downtime.changed"
)

// EquipmentListener пересылает доменные события подписчикам филиала.
type EquipmentListener struct {
	wsNotificationService services.WebSocketNotificationServiceInterface
	logger                *zap.Logger
}

func NewEquipmentListener(ws services.WebSocketNotificationServiceInterface, logger *zap.Logger) *EquipmentListener {
	return &EquipmentListener{wsNotificationService: ws, logger: logger}
}

func (l *EquipmentListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.EquipmentChanged, l.handleEquipmentChanged)
	bus.Subscribe(events.DowntimeChanged, l.handleDowntimeChanged)
	l.logger.Info("EquipmentListener подписан на события оборудования и простоев")
}

func (l *EquipmentListener) handleEquipmentChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentChangedEvent)
	if !ok {
		return nil
	}
	if err := l.wsNotificationService.SendToBranch(ctx, e.BranchID, e, MessageEquipmentChanged); err != nil {
		l.logger.Error("Не удалось отправить WebSocket-уведомление об оборудовании",
			zap.String("branch_id", e.BranchID), zap.String("asset_id", e.Asset.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (l *EquipmentListener) handleDowntimeChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DowntimeChangedEvent)
	if !ok {
		return nil
	}
	if err := l.wsNotificationService.SendToBranch(ctx, e.BranchID, e, MessageDowntimeChanged); err != nil {
		l.logger.Error("Не удалось отправить WebSocket-уведомление о простое",
			zap.String("branch_id", e.BranchID), zap.String("ticket_id", e.TicketID.String()), zap.Error(err))
		return err
	}
	return nil
}
