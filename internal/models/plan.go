package models

import "time"

// UnlimitedScans значение ScanLimit для тарифов без ограничений.
const UnlimitedScans int64 = -1

// Plan тарифный план владельца ссылок. Запись создается и меняется
// биллинговой подсистемой, здесь только читаем.
type Plan struct {
	ID              uint      `json:"ID"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Ref             string    `json:"ref" gorm:"uniqueIndex;size:64"`
	ScanLimit       int64     `json:"scanLimit"`
	ScansThisPeriod int64     `json:"scansThisPeriod"`
	PeriodEnd       time.Time `json:"periodEnd"`
}

// QuotaState снимок состояния квоты на момент чтения. Данные
// приблизительные: обновляются по таймеру, а не на каждый запрос.
type QuotaState struct {
	PlanRef         string    `json:"planRef"`
	ScanLimit       int64     `json:"scanLimit"`
	ScansThisPeriod int64     `json:"scansThisPeriod"`
	PeriodEnd       time.Time `json:"periodEnd"`
}

// Unlimited квота не ограничена.
func (q QuotaState) Unlimited() bool {
	return q.ScanLimit == UnlimitedScans
}
