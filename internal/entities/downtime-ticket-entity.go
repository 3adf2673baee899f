package entities

import (
	"time"

	"github.com/google/uuid"

	"equipment-register/pkg/constants"
)

type DowntimeTicket struct {
	ID       uuid.UUID                `json:"id"`
	AssetID  uuid.UUID                `json:"asset_id"`
	Status   constants.DowntimeStatus `json:"status"`
	Reason   string                   `json:"reason"`
	Notes    *string                  `json:"notes"`
	OpenedAt time.Time                `json:"opened_at"`
	ClosedAt *time.Time               `json:"closed_at"`
}

func (t *DowntimeTicket) IsOpen() bool {
	return t.Status == constants.DowntimeOpen
}

// Close переводит тикет в CLOSED и дописывает заметку к уже существующей.
func (t *DowntimeTicket) Close(at time.Time, notes string) {
	t.Status = constants.DowntimeClosed
	closedAt := at
	t.ClosedAt = &closedAt
	if notes == "" {
		return
	}
	if t.Notes == nil || *t.Notes == "" {
		t.Notes = &notes
		return
	}
	merged := *t.Notes + "\n" + notes
	t.Notes = &merged
}

func (t *DowntimeTicket) Clone() DowntimeTicket {
	c := *t
	c.Notes = clonePtr(t.Notes)
	c.ClosedAt = clonePtr(t.ClosedAt)
	return c
}

// OpenDowntime - открытый тикет вместе с идентификацией оборудования.
type OpenDowntime struct {
	Ticket DowntimeTicket `json:"ticket"`
	Asset  AssetRef       `json:"asset"`
}

type AssetRef struct {
	ID       uuid.UUID                   `json:"id"`
	Code     string                      `json:"code"`
	Name     string                      `json:"name"`
	Category constants.EquipmentCategory `json:"category"`
}

func (a *EquipmentAsset) Ref() AssetRef {
	return AssetRef{ID: a.ID, Code: a.Code, Name: a.Name, Category: a.Category()}
}
