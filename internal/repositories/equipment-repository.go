package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-register/internal/entities"
	db "equipment-register/internal/infrastructure/bd"
	"equipment-register/pkg/constants"
	apperrors "equipment-register/pkg/errors"
)

const (
	equipmentTable  = "equipment_assets"
	equipmentFields = `id, branch_id, code, name, category, make, model, serial,
		owner_department_id, unit_id, room_id, location_node_id,
		operational_status, is_schedulable,
		amc_vendor, amc_valid_from, amc_valid_to, warranty_valid_to, pm_frequency_days, next_pm_due_at,
		aerb_license_no, aerb_valid_to, pcpndt_reg_no, pcpndt_valid_to,
		created_at, updated_at`

	downtimeTable  = "downtime_tickets"
	downtimeFields = "id, asset_id, status, reason, notes, opened_at, closed_at"

	equipmentAuditTable = "equipment_audit_logs"

	uqEquipmentBranchCode = "uq_equipment_branch_code"
	uqDowntimeOneOpen     = "uq_downtime_one_open"
)

// allowedEquipmentFilters - белый список колонок для фильтров списка.
var allowedEquipmentFilters = map[string]string{
	"branch_id":           "branch_id",
	"category":            "category",
	"operational_status":  "operational_status",
	"owner_department_id": "owner_department_id",
	"unit_id":             "unit_id",
	"room_id":             "room_id",
	"location_node_id":    "location_node_id",
}

var equipmentSearchColumns = []string{"name", "code", "serial"}

// EquipmentRepositoryInterface - чтение каталога и вход в транзакцию записи.
type EquipmentRepositoryInterface interface {
	FindAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error)
	ListAssets(ctx context.Context, filter entities.EquipmentFilter) ([]entities.EquipmentAsset, uint64, error)
	// ListTickets - тикеты оборудования, новые первыми; limit <= 0 - все.
	ListTickets(ctx context.Context, assetID uuid.UUID, limit int) ([]entities.DowntimeTicket, error)
	ListAudit(ctx context.Context, entityID uuid.UUID) ([]entities.EquipmentAuditEntry, error)
	// BranchSnapshot - согласованный срез для предупреждений и сводки.
	BranchSnapshot(ctx context.Context, branchID string) (*entities.BranchSnapshot, error)
	RunInTransaction(ctx context.Context, fn func(tx EquipmentTxRepository) error) error
}

// EquipmentTxRepository - операции внутри одной транзакции записи.
type EquipmentTxRepository interface {
	// LockAsset читает оборудование с блокировкой строки до конца транзакции.
	LockAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error)
	CodeExists(ctx context.Context, branchID, code string) (bool, error)
	InsertAsset(ctx context.Context, asset *entities.EquipmentAsset) error
	SaveAsset(ctx context.Context, asset *entities.EquipmentAsset) error

	FindOpenTicket(ctx context.Context, assetID uuid.UUID) (*entities.DowntimeTicket, error)
	LockTicket(ctx context.Context, id uuid.UUID) (*entities.DowntimeTicket, error)
	CountOpenTickets(ctx context.Context, assetID uuid.UUID) (int, error)
	InsertTicket(ctx context.Context, ticket *entities.DowntimeTicket) error
	SaveTicket(ctx context.Context, ticket *entities.DowntimeTicket) error

	InsertAudit(ctx context.Context, entry *entities.EquipmentAuditEntry) error
}

type equipmentRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage, txManager: NewTxManager(storage), logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *equipmentRepository) RunInTransaction(ctx context.Context, fn func(tx EquipmentTxRepository) error) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&equipmentTx{tx: tx})
	})
}

func (r *equipmentRepository) FindAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error) {
	return findAsset(ctx, r.storage, id, false)
}

func (r *equipmentRepository) ListAssets(ctx context.Context, filter entities.EquipmentFilter) ([]entities.EquipmentAsset, uint64, error) {
	where := equipmentWhere(filter)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From(equipmentTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL для подсчета оборудования: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}
	if total == 0 {
		return []entities.EquipmentAsset{}, 0, nil
	}

	builder := psql.Select(equipmentFields).From(equipmentTable).Where(where).
		OrderBy("created_at DESC", "id DESC")
	if filter.PageSize > 0 {
		builder = builder.Limit(uint64(filter.PageSize)).Offset(uint64(filter.Offset()))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL для списка оборудования: %w", err)
	}

	assets, err := queryAssets(ctx, r.storage, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// equipmentWhere собирает условия списка. Окна по срокам: дата <= now + N дней,
// что совпадает с DaysUntil(date) <= N.
func equipmentWhere(f entities.EquipmentFilter) sq.And {
	where := sq.And{}
	eq := map[string]interface{}{"branch_id": f.BranchID}
	if f.Category != nil {
		eq["category"] = string(*f.Category)
	}
	if f.OperationalStatus != nil {
		eq["operational_status"] = string(*f.OperationalStatus)
	}
	if f.OwnerDepartmentID != nil {
		eq["owner_department_id"] = *f.OwnerDepartmentID
	}
	if f.UnitID != nil {
		eq["unit_id"] = *f.UnitID
	}
	if f.RoomID != nil {
		eq["room_id"] = *f.RoomID
	}
	if f.LocationNodeID != nil {
		eq["location_node_id"] = *f.LocationNodeID
	}
	where = append(where, db.EqFilter(eq, allowedEquipmentFilters)...)

	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, db.SearchFilter(s, equipmentSearchColumns))
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	windows := []struct {
		days   *int
		column string
	}{
		{f.PmDueInDays, "next_pm_due_at"},
		{f.AmcExpiringInDays, "amc_valid_to"},
		{f.WarrantyExpiringInDays, "warranty_valid_to"},
	}
	for _, w := range windows {
		if w.days != nil {
			where = append(where, sq.LtOrEq{w.column: windowEnd(now, *w.days)})
		}
	}
	if f.ComplianceExpiringInDays != nil {
		until := windowEnd(now, *f.ComplianceExpiringInDays)
		where = append(where, sq.Or{
			sq.And{sq.Eq{"category": string(constants.CategoryRadiology)}, sq.LtOrEq{"aerb_valid_to": until}},
			sq.And{sq.Eq{"category": string(constants.CategoryUltrasound)}, sq.LtOrEq{"pcpndt_valid_to": until}},
		})
	}
	return where
}

func windowEnd(now time.Time, days int) time.Time {
	return now.Add(time.Duration(days) * 24 * time.Hour)
}

func (r *equipmentRepository) ListTickets(ctx context.Context, assetID uuid.UUID, limit int) ([]entities.DowntimeTicket, error) {
	builder := psql.Select(downtimeFields).From(downtimeTable).
		Where(sq.Eq{"asset_id": assetID.String()}).
		OrderBy("opened_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для тикетов: %w", err)
	}
	return queryTickets(ctx, r.storage, query, args...)
}

func (r *equipmentRepository) ListAudit(ctx context.Context, entityID uuid.UUID) ([]entities.EquipmentAuditEntry, error) {
	query, args, err := psql.Select("id, branch_id, action, entity, entity_id, meta, created_at").
		From(equipmentAuditTable).
		Where(sq.Eq{"entity_id": entityID.String()}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для журнала: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.EquipmentAuditEntry, 0)
	for rows.Next() {
		var e entities.EquipmentAuditEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.BranchID, &e.Action, &e.Entity, &e.EntityID, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования журнала: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("ошибка разбора meta журнала: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *equipmentRepository) BranchSnapshot(ctx context.Context, branchID string) (*entities.BranchSnapshot, error) {
	snap := &entities.BranchSnapshot{BranchID: branchID}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

	err := r.txManager.RunInTransactionWithOptions(ctx, opts, func(tx pgx.Tx) error {
		query, args, err := psql.Select(equipmentFields).From(equipmentTable).
			Where(sq.Eq{"branch_id": branchID}).
			OrderBy("created_at DESC", "id DESC").
			ToSql()
		if err != nil {
			return fmt.Errorf("ошибка сборки SQL для среза: %w", err)
		}
		if snap.Assets, err = queryAssets(ctx, tx, query, args...); err != nil {
			return err
		}

		openQuery, openArgs, err := psql.Select("t.id, t.asset_id, t.status, t.reason, t.notes, t.opened_at, t.closed_at, a.code, a.name, a.category").
			From(downtimeTable + " t").
			Join(equipmentTable + " a ON a.id = t.asset_id").
			Where(sq.Eq{"a.branch_id": branchID, "t.status": string(constants.DowntimeOpen)}).
			OrderBy("t.opened_at DESC").
			ToSql()
		if err != nil {
			return fmt.Errorf("ошибка сборки SQL для открытых тикетов: %w", err)
		}
		rows, err := tx.Query(ctx, openQuery, openArgs...)
		if err != nil {
			return fmt.Errorf("ошибка чтения открытых тикетов: %w", err)
		}
		defer rows.Close()

		snap.OpenTickets = make([]entities.OpenDowntime, 0)
		for rows.Next() {
			var o entities.OpenDowntime
			var status, category string
			var notes null.String
			var closedAt null.Time
			if err := rows.Scan(&o.Ticket.ID, &o.Ticket.AssetID, &status, &o.Ticket.Reason, &notes, &o.Ticket.OpenedAt, &closedAt,
				&o.Asset.Code, &o.Asset.Name, &category); err != nil {
				return fmt.Errorf("ошибка сканирования открытого тикета: %w", err)
			}
			o.Ticket.Status = constants.DowntimeStatus(status)
			o.Ticket.Notes = notes.Ptr()
			o.Ticket.ClosedAt = closedAt.Ptr()
			o.Asset.ID = o.Ticket.AssetID
			o.Asset.Category = constants.EquipmentCategory(category)
			snap.OpenTickets = append(snap.OpenTickets, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ============================================================
// ТРАНЗАКЦИЯ
// ============================================================

type equipmentTx struct {
	tx pgx.Tx
}

func (t *equipmentTx) LockAsset(ctx context.Context, id uuid.UUID) (*entities.EquipmentAsset, error) {
	return findAsset(ctx, t.tx, id, true)
}

func (t *equipmentTx) CodeExists(ctx context.Context, branchID, code string) (bool, error) {
	query, args, err := psql.Select("1").From(equipmentTable).
		Where(sq.Eq{"branch_id": branchID, "code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("ошибка сборки SQL для CodeExists: %w", err)
	}
	var one int
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка проверки кода: %w", err)
	}
	return true, nil
}

func (t *equipmentTx) InsertAsset(ctx context.Context, a *entities.EquipmentAsset) error {
	c := a.Compliance
	if c == nil {
		c = entities.GeneralCompliance{}
	}
	f := c.Fields()
	query, args, err := psql.Insert(equipmentTable).
		Columns("id", "branch_id", "code", "name", "category", "make", "model", "serial",
			"owner_department_id", "unit_id", "room_id", "location_node_id",
			"operational_status", "is_schedulable",
			"amc_vendor", "amc_valid_from", "amc_valid_to", "warranty_valid_to", "pm_frequency_days", "next_pm_due_at",
			"aerb_license_no", "aerb_valid_to", "pcpndt_reg_no", "pcpndt_valid_to",
			"created_at", "updated_at").
		Values(a.ID, a.BranchID, a.Code, a.Name, string(c.Category()), a.Make, a.Model, a.Serial,
			a.OwnerDepartmentID, a.UnitID, a.RoomID, a.LocationNodeID,
			string(a.OperationalStatus), a.IsSchedulable,
			a.AmcVendor, a.AmcValidFrom, a.AmcValidTo, a.WarrantyValidTo, a.PmFrequencyDays, a.NextPmDueAt,
			f.AerbLicenseNo, f.AerbValidTo, f.PcpndtRegNo, f.PcpndtValidTo,
			a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса InsertAsset: %w", err)
	}
	if _, err := t.tx.Exec(ctx, query, args...); err != nil {
		return translatePgError(err, "ошибка создания оборудования")
	}
	return nil
}

func (t *equipmentTx) SaveAsset(ctx context.Context, a *entities.EquipmentAsset) error {
	c := a.Compliance
	if c == nil {
		c = entities.GeneralCompliance{}
	}
	f := c.Fields()
	query, args, err := psql.Update(equipmentTable).
		Set("name", a.Name).
		Set("category", string(c.Category())).
		Set("make", a.Make).
		Set("model", a.Model).
		Set("serial", a.Serial).
		Set("owner_department_id", a.OwnerDepartmentID).
		Set("unit_id", a.UnitID).
		Set("room_id", a.RoomID).
		Set("location_node_id", a.LocationNodeID).
		Set("operational_status", string(a.OperationalStatus)).
		Set("is_schedulable", a.IsSchedulable).
		Set("amc_vendor", a.AmcVendor).
		Set("amc_valid_from", a.AmcValidFrom).
		Set("amc_valid_to", a.AmcValidTo).
		Set("warranty_valid_to", a.WarrantyValidTo).
		Set("pm_frequency_days", a.PmFrequencyDays).
		Set("next_pm_due_at", a.NextPmDueAt).
		Set("aerb_license_no", f.AerbLicenseNo).
		Set("aerb_valid_to", f.AerbValidTo).
		Set("pcpndt_reg_no", f.PcpndtRegNo).
		Set("pcpndt_valid_to", f.PcpndtValidTo).
		Set("updated_at", a.UpdatedAt).
		Where(sq.Eq{"id": a.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса SaveAsset: %w", err)
	}
	result, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return translatePgError(err, "ошибка обновления оборудования")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

func (t *equipmentTx) FindOpenTicket(ctx context.Context, assetID uuid.UUID) (*entities.DowntimeTicket, error) {
	query, args, err := psql.Select(downtimeFields).From(downtimeTable).
		Where(sq.Eq{"asset_id": assetID.String(), "status": string(constants.DowntimeOpen)}).
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindOpenTicket: %w", err)
	}
	return scanTicket(t.tx.QueryRow(ctx, query, args...))
}

// LockTicket блокирует сначала оборудование тикета, затем сам тикет:
// порядок блокировок везде один (оборудование -> тикет).
func (t *equipmentTx) LockTicket(ctx context.Context, id uuid.UUID) (*entities.DowntimeTicket, error) {
	query, args, err := psql.Select("asset_id").From(downtimeTable).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для LockTicket: %w", err)
	}
	var assetID uuid.UUID
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&assetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("ошибка чтения тикета простоя: %w", err)
	}
	if _, err := t.LockAsset(ctx, assetID); err != nil {
		return nil, err
	}

	query, args, err = psql.Select(downtimeFields).From(downtimeTable).
		Where(sq.Eq{"id": id.String()}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для LockTicket: %w", err)
	}
	return scanTicket(t.tx.QueryRow(ctx, query, args...))
}

func (t *equipmentTx) CountOpenTickets(ctx context.Context, assetID uuid.UUID) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(downtimeTable).
		Where(sq.Eq{"asset_id": assetID.String(), "status": string(constants.DowntimeOpen)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CountOpenTickets: %w", err)
	}
	var n int
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета открытых тикетов: %w", err)
	}
	return n, nil
}

func (t *equipmentTx) InsertTicket(ctx context.Context, ticket *entities.DowntimeTicket) error {
	query, args, err := psql.Insert(downtimeTable).
		Columns("id", "asset_id", "status", "reason", "notes", "opened_at", "closed_at").
		Values(ticket.ID, ticket.AssetID, string(ticket.Status), ticket.Reason, ticket.Notes, ticket.OpenedAt, ticket.ClosedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса InsertTicket: %w", err)
	}
	if _, err := t.tx.Exec(ctx, query, args...); err != nil {
		return translatePgError(err, "ошибка создания тикета простоя")
	}
	return nil
}

func (t *equipmentTx) SaveTicket(ctx context.Context, ticket *entities.DowntimeTicket) error {
	query, args, err := psql.Update(downtimeTable).
		Set("status", string(ticket.Status)).
		Set("notes", ticket.Notes).
		Set("closed_at", ticket.ClosedAt).
		Where(sq.Eq{"id": ticket.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса SaveTicket: %w", err)
	}
	result, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return translatePgError(err, "ошибка обновления тикета простоя")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (t *equipmentTx) InsertAudit(ctx context.Context, entry *entities.EquipmentAuditEntry) error {
	var meta []byte
	if entry.Meta != nil {
		var err error
		if meta, err = json.Marshal(entry.Meta); err != nil {
			return fmt.Errorf("ошибка сериализации meta журнала: %w", err)
		}
	}
	query, args, err := psql.Insert(equipmentAuditTable).
		Columns("branch_id", "action", "entity", "entity_id", "meta", "created_at").
		Values(entry.BranchID, entry.Action, entry.Entity, entry.EntityID, meta, entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса InsertAudit: %w", err)
	}
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("ошибка записи журнала: %w", err)
	}
	return nil
}

// ============================================================
// СКАНИРОВАНИЕ
// ============================================================

func findAsset(ctx context.Context, q Querier, id uuid.UUID, forUpdate bool) (*entities.EquipmentAsset, error) {
	builder := psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"id": id.String()})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для findAsset: %w", err)
	}
	asset, err := scanAsset(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

func queryAssets(ctx context.Context, q Querier, query string, args ...interface{}) ([]entities.EquipmentAsset, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения оборудования: %w", err)
	}
	defer rows.Close()

	assets := make([]entities.EquipmentAsset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*entities.EquipmentAsset, error) {
	var a entities.EquipmentAsset
	var category, status string
	var mk, model, serial, ownerDep, unit, room, node, amcVendor null.String
	var amcFrom, amcTo, warrantyTo, nextPm null.Time
	var pmFreq null.Int
	var aerbNo, pcpndtNo null.String
	var aerbTo, pcpndtTo null.Time
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&a.ID, &a.BranchID, &a.Code, &a.Name, &category, &mk, &model, &serial,
		&ownerDep, &unit, &room, &node,
		&status, &a.IsSchedulable,
		&amcVendor, &amcFrom, &amcTo, &warrantyTo, &pmFreq, &nextPm,
		&aerbNo, &aerbTo, &pcpndtNo, &pcpndtTo,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("ошибка сканирования equipment_assets: %w", err)
	}

	a.Make, a.Model, a.Serial = mk.Ptr(), model.Ptr(), serial.Ptr()
	a.OwnerDepartmentID, a.UnitID, a.RoomID, a.LocationNodeID = ownerDep.Ptr(), unit.Ptr(), room.Ptr(), node.Ptr()
	a.OperationalStatus = constants.OperationalStatus(status)
	a.AmcVendor = amcVendor.Ptr()
	a.AmcValidFrom, a.AmcValidTo, a.WarrantyValidTo = amcFrom.Ptr(), amcTo.Ptr(), warrantyTo.Ptr()
	a.PmFrequencyDays = pmFreq.Ptr()
	a.NextPmDueAt = nextPm.Ptr()
	a.Compliance = entities.ComplianceFromStorage(constants.EquipmentCategory(category), entities.ComplianceFields{
		AerbLicenseNo: aerbNo.Ptr(),
		AerbValidTo:   aerbTo.Ptr(),
		PcpndtRegNo:   pcpndtNo.Ptr(),
		PcpndtValidTo: pcpndtTo.Ptr(),
	})
	a.CreatedAt = &createdAt
	a.UpdatedAt = &updatedAt
	return &a, nil
}

func queryTickets(ctx context.Context, q Querier, query string, args ...interface{}) ([]entities.DowntimeTicket, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тикетов: %w", err)
	}
	defer rows.Close()

	tickets := make([]entities.DowntimeTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*entities.DowntimeTicket, error) {
	var t entities.DowntimeTicket
	var status string
	var notes null.String
	var closedAt null.Time
	if err := row.Scan(&t.ID, &t.AssetID, &status, &t.Reason, &notes, &t.OpenedAt, &closedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования downtime_tickets: %w", err)
	}
	t.Status = constants.DowntimeStatus(status)
	t.Notes = notes.Ptr()
	t.ClosedAt = closedAt.Ptr()
	return &t, nil
}

// translatePgError переводит нарушения ограничений в ошибки домена.
func translatePgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == uqEquipmentBranchCode:
			return apperrors.NewValidationError("code", "код уже используется в этом филиале")
		case pgErr.Code == "23505" && pgErr.ConstraintName == uqDowntimeOneOpen:
			return apperrors.NewInvalidStateError("у оборудования уже есть открытый тикет простоя")
		case pgErr.Code == "23514":
			return apperrors.NewValidationError("", "нарушено ограничение %s", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
