package seeders

import "equipment-register/pkg/constants"

type equipmentSeed struct {
	Code     string
	Name     string
	Category constants.EquipmentCategory
	Make     string
	Model    string
	UnitID   string
	RoomID   string

	Schedulable bool
	// Смещения в днях от момента сидирования; 0 - поле не заполняется.
	PmFrequencyDays int
	NextPmInDays    int
	AmcVendor       string
	AmcInDays       int
	WarrantyInDays  int

	AerbLicenseNo  string
	AerbInDays     int
	PcpndtRegNo    string
	PcpndtInDays   int
	DowntimeReason string
}

var equipmentData = []equipmentSeed{
	{
		Code: "XRAY-01", Name: "Рентгеновский аппарат", Category: constants.CategoryRadiology,
		Make: "Siemens", Model: "Multix Impact", UnitID: "RAD", RoomID: "RAD-101",
		Schedulable: true, PmFrequencyDays: 90, NextPmInDays: 5,
		AmcVendor: "Siemens Healthineers", AmcInDays: 120,
		AerbLicenseNo: "AERB-R-2201", AerbInDays: 20,
	},
	{
		Code: "CT-01", Name: "Компьютерный томограф", Category: constants.CategoryRadiology,
		Make: "GE", Model: "Revolution EVO", UnitID: "RAD", RoomID: "RAD-104",
		Schedulable: true, PmFrequencyDays: 60, NextPmInDays: -3,
		AmcVendor: "Wipro GE", AmcInDays: 25,
		AerbLicenseNo: "AERB-R-2202", AerbInDays: 300,
	},
	{
		Code: "USG-01", Name: "УЗИ-сканер", Category: constants.CategoryUltrasound,
		Make: "Philips", Model: "Affiniti 50", UnitID: "OBG", RoomID: "OBG-12",
		Schedulable: true, PmFrequencyDays: 180,
		WarrantyInDays: 45, PcpndtRegNo: "PCPNDT-778", PcpndtInDays: 9,
	},
	{
		Code: "USG-02", Name: "Портативный УЗИ-сканер", Category: constants.CategoryUltrasound,
		Make: "Mindray", Model: "M7", UnitID: "ER",
		Schedulable: true, WarrantyInDays: 400,
	},
	{
		Code: "VENT-01", Name: "Аппарат ИВЛ", Category: constants.CategoryGeneral,
		Make: "Draeger", Model: "Evita V300", UnitID: "ICU", RoomID: "ICU-3",
		PmFrequencyDays: 30, AmcVendor: "Draeger Service", AmcInDays: 200,
		DowntimeReason: "Ошибка датчика потока",
	},
	{
		Code: "MON-01", Name: "Прикроватный монитор", Category: constants.CategoryGeneral,
		Make: "Nihon Kohden", Model: "BSM-3500", UnitID: "ICU",
		WarrantyInDays: 15,
	},
}
