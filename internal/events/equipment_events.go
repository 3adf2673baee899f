package events

import (
	"time"

	"github.com/google/uuid"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
)

const (
	EquipmentChanged = "equipment.asset.changed"
	DowntimeChanged  = "equipment.downtime.changed"
)

// EquipmentChangedEvent - создание, изменение или списание оборудования.
type EquipmentChangedEvent struct {
	BranchID    string                      `json:"branch_id"`
	Action      string                      `json:"action"`
	Asset       entities.AssetRef           `json:"asset"`
	Status      constants.OperationalStatus `json:"operational_status"`
	Schedulable bool                        `json:"is_schedulable"`
	Warnings    []string                    `json:"warnings,omitempty"`
	OccurredAt  time.Time                   `json:"occurred_at"`
}

func (e EquipmentChangedEvent) Name() string { return EquipmentChanged }

// DowntimeChangedEvent - открытие или закрытие тикета простоя.
type DowntimeChangedEvent struct {
	BranchID   string                      `json:"branch_id"`
	Action     string                      `json:"action"`
	TicketID   uuid.UUID                   `json:"ticket_id"`
	Asset      entities.AssetRef           `json:"asset"`
	Status     constants.OperationalStatus `json:"operational_status"`
	OccurredAt time.Time                   `json:"occurred_at"`
}

func (e DowntimeChangedEvent) Name() string { return DowntimeChanged }
