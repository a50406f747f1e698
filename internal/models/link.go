package models

import "time"

// CodeLength длина короткого кода.
const CodeLength = 8

// LinkKind тип ссылки.
type LinkKind string

// LinkKindStatic ссылка с неизменяемым адресом назначения.
// LinkKindDynamic адрес назначения можно менять после создания.
const (
	LinkKindStatic  LinkKind = "static"
	LinkKindDynamic LinkKind = "dynamic"
)

// LinkStatus статус ссылки.
type LinkStatus string

// LinkStatusActive ссылка активна, редиректим.
// LinkStatusPaused ссылка приостановлена владельцем.
// LinkStatusExpired срок действия ссылки истек.
const (
	LinkStatusActive  LinkStatus = "active"
	LinkStatusPaused  LinkStatus = "paused"
	LinkStatusExpired LinkStatus = "expired"
)

// ShortLink структура модели хранения короткой ссылки.
// Destination меняется только для kind=dynamic; каждое изменение
// увеличивает Version (монотонно, нужен для инвалидации кеша).
type ShortLink struct {
	ID          uint       `json:"ID"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
	Code        string     `json:"code" gorm:"uniqueIndex;size:8"`
	OwnerID     string     `json:"ownerID" gorm:"index"`
	Kind        LinkKind   `json:"kind" gorm:"size:16"`
	Destination string     `json:"destination" gorm:"size:2048"`
	Status      LinkStatus `json:"status" gorm:"size:16;index"`
	Version     uint64     `json:"version"`
	PlanRef     string     `json:"planRef" gorm:"size:64"`
}
