package memory

import (
	"context"

	"github.com/google/uuid"

	"equipment-register/internal/entities"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
)

// equipmentTx видит свои изменения поверх хранилища; хранилище меняется только в commit.
type equipmentTx struct {
	repo    *EquipmentRepository
	assets  map[uuid.UUID]*entities.EquipmentAsset
	tickets map[uuid.UUID]*entities.DowntimeTicket
	audit   []entities.EquipmentAuditEntry
}

func (t *equipmentTx) asset(id uuid.UUID) (*entities.EquipmentAsset, bool) {
	if a, ok := t.assets[id]; ok {
		return a, true
	}
	a, ok := t.repo.assets[id]
	return a, ok
}

func (t *equipmentTx) ticket(id uuid.UUID) (*entities.DowntimeTicket, bool) {
	if tk, ok := t.tickets[id]; ok {
		return tk, true
	}
	tk, ok := t.repo.tickets[id]
	return tk, ok
}

// eachTicket обходит тикеты с учетом изменений транзакции.
func (t *equipmentTx) eachTicket(fn func(tk *entities.DowntimeTicket)) {
	for id, tk := range t.repo.tickets {
		if staged, ok := t.tickets[id]; ok {
			tk = staged
		}
		fn(tk)
	}
	for id, tk := range t.tickets {
		if _, ok := t.repo.tickets[id]; !ok {
			fn(tk)
		}
	}
}

func (t *equipmentTx) LockAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error) {
	a, ok := t.asset(id)
	if !ok {
		return nil, apperrors.ErrAssetNotFound
	}
	return a.Clone(), nil
}

func (t *equipmentTx) CodeExists(ctx context.Context, branchID, code string) (bool, error) {
	for id, a := range t.repo.assets {
		if staged, ok := t.assets[id]; ok {
			a = staged
		}
		if a.BranchID == branchID && a.Code == code {
			return true, nil
		}
	}
	for id, a := range t.assets {
		if _, ok := t.repo.assets[id]; !ok && a.BranchID == branchID && a.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *equipmentTx) InsertAsset(ctx context.Context, a *entities.EquipmentAsset) error {
	if _, ok := t.asset(a.ID); ok {
		return apperrors.NewValidationError("id", "оборудование %s уже существует", a.ID)
	}
	exists, _ := t.CodeExists(ctx, a.BranchID, a.Code)
	if exists {
		return apperrors.NewValidationError("code", "код уже используется в этом филиале")
	}
	if err := checkAssetConstraints(a); err != nil {
		return err
	}
	t.assets[a.ID] = a.Clone()
	return nil
}

func (t *equipmentTx) SaveAsset(ctx context.Context, a *entities.EquipmentAsset) error {
	if _, ok := t.asset(a.ID); !ok {
		return apperrors.ErrAssetNotFound
	}
	if err := checkAssetConstraints(a); err != nil {
		return err
	}
	t.assets[a.ID] = a.Clone()
	return nil
}

func (t *equipmentTx) FindOpenTicket(ctx context.Context, assetID uuid.UUID) (*entities.DowntimeTicket, error) {
	var found *entities.DowntimeTicket
	t.eachTicket(func(tk *entities.DowntimeTicket) {
		if found == nil && tk.AssetID == assetID && tk.IsOpen() {
			found = tk
		}
	})
	if found == nil {
		return nil, apperrors.ErrTicketNotFound
	}
	c := found.Clone()
	return &c, nil
}

func (t *equipmentTx) LockTicket(ctx context.Context, id uuid.UUID) (*entities.DowntimeTicket, error) {
	tk, ok := t.ticket(id)
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	c := tk.Clone()
	return &c, nil
}

func (t *equipmentTx) CountOpenTickets(ctx context.Context, assetID uuid.UUID) (int, error) {
	n := 0
	t.eachTicket(func(tk *entities.DowntimeTicket) {
		if tk.AssetID == assetID && tk.IsOpen() {
			n++
		}
	})
	return n, nil
}

func (t *equipmentTx) InsertTicket(ctx context.Context, tk *entities.DowntimeTicket) error {
	if _, ok := t.asset(tk.AssetID); !ok {
		return apperrors.ErrAssetNotFound
	}
	if tk.IsOpen() {
		if n, _ := t.CountOpenTickets(ctx, tk.AssetID); n > 0 {
			return apperrors.NewInvalidStateError("у оборудования уже есть открытый тикет простоя")
		}
	}
	c := tk.Clone()
	t.tickets[tk.ID] = &c
	return nil
}

func (t *equipmentTx) SaveTicket(ctx context.Context, tk *entities.DowntimeTicket) error {
	if _, ok := t.ticket(tk.ID); !ok {
		return apperrors.ErrTicketNotFound
	}
	c := tk.Clone()
	t.tickets[tk.ID] = &c
	return nil
}

func (t *equipmentTx) InsertAudit(ctx context.Context, e *entities.EquipmentAuditEntry) error {
	e.ID = uint64(len(t.repo.audit) + len(t.audit) + 1)
	t.audit = append(t.audit, *e)
	return nil
}

func (t *equipmentTx) commit() {
	for id, a := range t.assets {
		t.repo.assets[id] = a
		t.repo.stamp(id)
	}
	for id, tk := range t.tickets {
		t.repo.tickets[id] = tk
		t.repo.stamp(id)
	}
	t.repo.audit = append(t.repo.audit, t.audit...)
}

// checkAssetConstraints повторяет CHECK-ограничения таблицы equipment_assets.
func checkAssetConstraints(a *entities.EquipmentAsset) error {
	if a.OperationalStatus == constants.StatusRetired && a.IsSchedulable {
		return apperrors.NewValidationError("", "нарушено ограничение ck_equipment_retired_not_schedulable")
	}
	if a.RoomID != nil && a.UnitID == nil {
		return apperrors.NewValidationError("", "нарушено ограничение ck_equipment_room_needs_unit")
	}
	return nil
}
