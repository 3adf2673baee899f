package entities

import (
	"time"

	"github.com/google/uuid"
)

type EquipmentAuditEntry struct {
	ID        uint64                 `json:"id"`
	BranchID  string                 `json:"branch_id"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  uuid.UUID              `json:"entity_id"`
	Meta      map[string]interface{} `json:"meta"`
	CreatedAt time.Time              `json:"created_at"`
}
