package controllers

import "errors"

// Ошибки.
var (
	ErrRecordNotFound        = errors.New("record not found")      // Запись не найдена
	ErrLinkInactive          = errors.New("link inactive")         // Ссылка приостановлена или истекла
	ErrResolutionUnavailable = errors.New("temporary unavailable") // Хранилище недоступно
	ErrInternal              = errors.New("internal error")        // Прочая ошибка
)
