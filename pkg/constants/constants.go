// pkg/constants/constants.go
package constants

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Сводка по оборудованию филиала для поколения данных.
	// Формат: equipment_summary:<branchID>:<generation> -> JSON
	CacheKeyEquipmentSummary = "equipment_summary:%s:%d"
	// Поколение данных филиала, увеличивается каждой мутацией.
	// Формат: equipment_summary_gen:<branchID> -> int
	CacheKeyEquipmentSummaryGen = "equipment_summary_gen:%s"
)

//============== LIMITS ==============

const (
	EquipmentNameMaxLen   = 160
	DowntimeReasonMaxLen  = 240
	EquipmentTicketsOnGet = 50

	EquipmentDefaultPageSize = 50
	EquipmentMaxPageSize     = 200
)

// Системная пометка при принудительном закрытии тикета во время списания.
const DowntimeRetiredNote = "Закрыт автоматически: оборудование списано"
