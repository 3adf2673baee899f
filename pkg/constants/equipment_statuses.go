package constants

// --- КАТЕГОРИИ ОБОРУДОВАНИЯ ---
type EquipmentCategory string

const (
	CategoryGeneral    EquipmentCategory = "GENERAL"
	CategoryRadiology  EquipmentCategory = "RADIOLOGY"
	CategoryUltrasound EquipmentCategory = "ULTRASOUND"
)

var EquipmentCategories = []EquipmentCategory{
	CategoryGeneral,
	CategoryRadiology,
	CategoryUltrasound,
}

func (c EquipmentCategory) IsValid() bool {
	for _, v := range EquipmentCategories {
		if v == c {
			return true
		}
	}
	return false
}

// --- ЭКСПЛУАТАЦИОННЫЕ СТАТУСЫ (совпадают со значениями в БД) ---
type OperationalStatus string

const (
	StatusOperational OperationalStatus = "OPERATIONAL"
	StatusDown        OperationalStatus = "DOWN"
	StatusMaintenance OperationalStatus = "MAINTENANCE"
	StatusRetired     OperationalStatus = "RETIRED"
)

var OperationalStatuses = []OperationalStatus{
	StatusOperational,
	StatusDown,
	StatusMaintenance,
	StatusRetired,
}

func (s OperationalStatus) IsValid() bool {
	for _, v := range OperationalStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Финальный статус
func (s OperationalStatus) IsFinal() bool {
	return s == StatusRetired
}

// Ручные переходы через Update. Ребро OPERATIONAL<->DOWN пишет только
// механизм тикетов простоя, в RETIRED ведет отдельный путь списания.
var manualTransitions = map[OperationalStatus][]OperationalStatus{
	StatusOperational: {StatusMaintenance},
	StatusMaintenance: {StatusOperational},
}

func CanTransitionManually(from, to OperationalStatus) bool {
	if from == to {
		return true
	}
	if to == StatusRetired {
		return true
	}
	for _, s := range manualTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Статусы, из которых можно открыть простой.
func CanOpenDowntime(from OperationalStatus) bool {
	return from == StatusOperational || from == StatusMaintenance || from == StatusDown
}

// --- СТАТУСЫ ТИКЕТОВ ПРОСТОЯ ---
type DowntimeStatus string

const (
	DowntimeOpen   DowntimeStatus = "OPEN"
	DowntimeClosed DowntimeStatus = "CLOSED"
)

// --- ДЕЙСТВИЯ АУДИТА ---
const (
	AuditEquipmentCreate        = "EQUIPMENT_CREATE"
	AuditEquipmentUpdate        = "EQUIPMENT_UPDATE"
	AuditEquipmentRetire        = "EQUIPMENT_RETIRE"
	AuditEquipmentDowntimeOpen  = "EQUIPMENT_DOWNTIME_OPEN"
	AuditEquipmentDowntimeClose = "EQUIPMENT_DOWNTIME_CLOSE"
)

const (
	AuditEntityEquipmentAsset = "EquipmentAsset"
	AuditEntityDowntimeTicket = "DowntimeTicket"
)
