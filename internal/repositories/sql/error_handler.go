package sql

import (
	"github.com/fsdevblog/qrshort/internal/repositories"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ConvertErrorType конвертирует ошибки gorm в общие ошибки уровня репозитория.
func ConvertErrorType(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	default:
		return repositories.ErrUnknown
	}
}
