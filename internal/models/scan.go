package models

import "time"

// DeviceType тип устройства по User-Agent.
type DeviceType string

// Известные типы устройств. Все что не распознали помечаем как DeviceUnknown.
const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

// UnknownValue значение по умолчанию для нераспознанных полей трекинга.
const UnknownValue = "unknown"

// TrackingSignals разобранные сигналы клиента. Значение иммутабельно,
// вычисляется на каждый запрос заново и само по себе не хранится —
// только в составе ScanEvent.
type TrackingSignals struct {
	IP             string     `json:"ip" gorm:"size:45"`
	Country        string     `json:"country,omitempty" gorm:"size:2"`
	Region         string     `json:"region,omitempty" gorm:"size:128"`
	City           string     `json:"city,omitempty" gorm:"size:128"`
	Latitude       float64    `json:"latitude,omitempty"`
	Longitude      float64    `json:"longitude,omitempty"`
	Device         DeviceType `json:"device" gorm:"size:16"`
	Browser        string     `json:"browser" gorm:"size:64"`
	BrowserVersion string     `json:"browserVersion" gorm:"size:32"`
	OS             string     `json:"os" gorm:"size:64"`
	OSVersion      string     `json:"osVersion" gorm:"size:32"`
	Referer        string     `json:"referer,omitempty" gorm:"size:512"`
	Language       string     `json:"language,omitempty" gorm:"size:16"`
	IsBot          bool       `json:"isBot"`
}

// ScanEvent одно сканирование короткой ссылки. ID генерируется заранее
// (uuid), чтобы повторная запись частично проваленного батча не давала
// дублей в хранилище.
type ScanEvent struct {
	ID         string          `json:"ID" gorm:"primaryKey;size:36"`
	Code       string          `json:"code" gorm:"index;size:8"`
	OccurredAt time.Time       `json:"occurredAt" gorm:"index"`
	Signals    TrackingSignals `json:"signals" gorm:"embedded"`
	Counted    bool            `json:"counted"`
	OverQuota  bool            `json:"overQuota"`
}
