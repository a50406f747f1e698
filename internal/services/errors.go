package services

import "errors"

var (
	ErrUnknown        = errors.New("[service]: unknown error")
	ErrRecordNotFound = errors.New("[service]: record not found")
	ErrDuplicateKey   = errors.New("[service]: duplicate key")
	// ErrStaticDestination адрес назначения статичной ссылки неизменяем.
	ErrStaticDestination = errors.New("[service]: static link destination is immutable")
)
