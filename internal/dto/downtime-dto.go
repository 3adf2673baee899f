package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
)

type OpenDowntimeDTO struct {
	AssetID string  `json:"asset_id" validate:"required,uuid"`
	Reason  string  `json:"reason"   validate:"required,max=240"`
	Notes   *string `json:"notes"    validate:"omitempty,max=2000"`
}

type CloseDowntimeDTO struct {
	TicketID string  `json:"ticket_id" validate:"required,uuid"`
	Notes    *string `json:"notes"     validate:"omitempty,max=2000"`
}

type DowntimeTicketDTO struct {
	ID       string                   `json:"id"`
	AssetID  string                   `json:"asset_id"`
	Status   constants.DowntimeStatus `json:"status"`
	Reason   string                   `json:"reason"`
	Notes    null.String              `json:"notes"`
	OpenedAt time.Time                `json:"opened_at"`
	ClosedAt null.Time                `json:"closed_at"`
}

func DowntimeTicketToDTO(t *entities.DowntimeTicket) DowntimeTicketDTO {
	return DowntimeTicketDTO{
		ID:       t.ID.String(),
		AssetID:  t.AssetID.String(),
		Status:   t.Status,
		Reason:   t.Reason,
		Notes:    null.StringFromPtr(t.Notes),
		OpenedAt: t.OpenedAt,
		ClosedAt: null.TimeFromPtr(t.ClosedAt),
	}
}

func DowntimeTicketsToDTO(list []entities.DowntimeTicket) []DowntimeTicketDTO {
	out := make([]DowntimeTicketDTO, 0, len(list))
	for i := range list {
		out = append(out, DowntimeTicketToDTO(&list[i]))
	}
	return out
}
