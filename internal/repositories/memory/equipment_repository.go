package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"equipment-register/internal/entities"
	"equipment-register/internal/repositories"
	apperrors "equipment-register/pkg/errors"
)

// EquipmentRepository хранит каталог в памяти. Транзакции записи
// выполняются по одной: изменения копятся и применяются при успехе.
type EquipmentRepository struct {
	mu      sync.RWMutex
	assets  map[uuid.UUID]*entities.EquipmentAsset
	tickets map[uuid.UUID]*entities.DowntimeTicket
	audit   []entities.EquipmentAuditEntry
	seq     map[uuid.UUID]uint64
	nextSeq uint64
}

func NewEquipmentRepository() *EquipmentRepository {
	return &EquipmentRepository{
		assets:  make(map[uuid.UUID]*entities.EquipmentAsset),
		tickets: make(map[uuid.UUID]*entities.DowntimeTicket),
		seq:     make(map[uuid.UUID]uint64),
	}
}

var _ repositories.EquipmentRepositoryInterface = (*EquipmentRepository)(nil)

func (r *EquipmentRepository) FindAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, apperrors.ErrAssetNotFound
	}
	return a.Clone(), nil
}

func (r *EquipmentRepository) ListAssets(ctx context.Context, f entities.EquipmentFilter) ([]entities.EquipmentAsset, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	matched := make([]*entities.EquipmentAsset, 0)
	for _, a := range r.assets {
		if matches(a, f, now) {
			matched = append(matched, a)
		}
	}
	r.sortNewestFirst(matched)

	total := uint64(len(matched))
	if f.PageSize > 0 {
		start := f.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	out := make([]entities.EquipmentAsset, 0, len(matched))
	for _, a := range matched {
		out = append(out, *a.Clone())
	}
	return out, total, nil
}

func (r *EquipmentRepository) ListTickets(ctx context.Context, assetID uuid.UUID, limit int) ([]entities.DowntimeTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ticketsOf(assetID, limit), nil
}

func (r *EquipmentRepository) ListAudit(ctx context.Context, entityID uuid.UUID) ([]entities.EquipmentAuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.EquipmentAuditEntry, 0)
	for _, e := range r.audit {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EquipmentRepository) BranchSnapshot(ctx context.Context, branchID string) (*entities.BranchSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &entities.BranchSnapshot{
		BranchID:    branchID,
		Assets:      make([]entities.EquipmentAsset, 0),
		OpenTickets: make([]entities.OpenDowntime, 0),
	}
	branchAssets := make([]*entities.EquipmentAsset, 0)
	for _, a := range r.assets {
		if a.BranchID == branchID {
			branchAssets = append(branchAssets, a)
		}
	}
	r.sortNewestFirst(branchAssets)
	for _, a := range branchAssets {
		snap.Assets = append(snap.Assets, *a.Clone())
	}
	for _, t := range r.tickets {
		if !t.IsOpen() {
			continue
		}
		a, ok := r.assets[t.AssetID]
		if !ok || a.BranchID != branchID {
			continue
		}
		snap.OpenTickets = append(snap.OpenTickets, entities.OpenDowntime{Ticket: t.Clone(), Asset: a.Ref()})
	}
	sort.Slice(snap.OpenTickets, func(i, j int) bool {
		return snap.OpenTickets[i].Ticket.OpenedAt.After(snap.OpenTickets[j].Ticket.OpenedAt)
	})
	return snap, nil
}

// RunInTransaction держит блокировку записи всю транзакцию. Ошибка fn
// отбрасывает накопленные изменения.
func (r *EquipmentRepository) RunInTransaction(ctx context.Context, fn func(tx repositories.EquipmentTxRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &equipmentTx{
		repo:    r,
		assets:  make(map[uuid.UUID]*entities.EquipmentAsset),
		tickets: make(map[uuid.UUID]*entities.DowntimeTicket),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (r *EquipmentRepository) ticketsOf(assetID uuid.UUID, limit int) []entities.DowntimeTicket {
	list := make([]*entities.DowntimeTicket, 0)
	for _, t := range r.tickets {
		if t.AssetID == assetID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OpenedAt.Equal(list[j].OpenedAt) {
			return list[i].OpenedAt.After(list[j].OpenedAt)
		}
		return r.seq[list[i].ID] > r.seq[list[j].ID]
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]entities.DowntimeTicket, 0, len(list))
	for _, t := range list {
		out = append(out, t.Clone())
	}
	return out
}

func (r *EquipmentRepository) sortNewestFirst(list []*entities.EquipmentAsset) {
	sort.Slice(list, func(i, j int) bool {
		ci, cj := list[i].CreatedAt, list[j].CreatedAt
		if ci != nil && cj != nil && !ci.Equal(*cj) {
			return ci.After(*cj)
		}
		return r.seq[list[i].ID] > r.seq[list[j].ID]
	})
}

func (r *EquipmentRepository) stamp(id uuid.UUID) {
	if _, ok := r.seq[id]; ok {
		return
	}
	r.nextSeq++
	r.seq[id] = r.nextSeq
}

func matches(a *entities.EquipmentAsset, f entities.EquipmentFilter, now time.Time) bool {
	if a.BranchID != f.BranchID {
		return false
	}
	if f.Category != nil && a.Category() != *f.Category {
		return false
	}
	if f.OperationalStatus != nil && a.OperationalStatus != *f.OperationalStatus {
		return false
	}
	if !eqPtr(f.OwnerDepartmentID, a.OwnerDepartmentID) || !eqPtr(f.UnitID, a.UnitID) ||
		!eqPtr(f.RoomID, a.RoomID) || !eqPtr(f.LocationNodeID, a.LocationNodeID) {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hit := strings.Contains(strings.ToLower(a.Name), s) ||
			strings.Contains(strings.ToLower(a.Code), s) ||
			(a.Serial != nil && strings.Contains(strings.ToLower(*a.Serial), s))
		if !hit {
			return false
		}
	}
	if !inWindow(a.NextPmDueAt, f.PmDueInDays, now) ||
		!inWindow(a.AmcValidTo, f.AmcExpiringInDays, now) ||
		!inWindow(a.WarrantyValidTo, f.WarrantyExpiringInDays, now) {
		return false
	}
	if f.ComplianceExpiringInDays != nil {
		var validTo *time.Time
		if a.Compliance != nil {
			validTo = a.Compliance.ValidTo()
		}
		if !inWindow(validTo, f.ComplianceExpiringInDays, now) {
			return false
		}
	}
	return true
}

// inWindow: фильтр не задан - true; задан - дата есть и date <= now + days.
func inWindow(date *time.Time, days *int, now time.Time) bool {
	if days == nil {
		return true
	}
	if date == nil {
		return false
	}
	return !date.After(now.Add(time.Duration(*days) * 24 * time.Hour))
}

func eqPtr(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}
