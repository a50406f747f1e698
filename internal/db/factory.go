package db

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/qrshort/internal/models"
	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypePostgres StorageType = "postgres"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType  StorageType
	PostgresDSN  *string
	SqliteDBPath *string
}

func NewConnectionFactory(config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == nil {
			return nil, errors.New("postgres dsn is empty")
		}
		conn, err := NewPostgres(*config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		return conn, nil
	case StorageTypeSQLite:
		if config.SqliteDBPath == nil {
			return nil, errors.New("sqlite db path is empty")
		}
		conn, err := NewSQLite(*config.SqliteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return conn, nil
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// да да, знаю что нужно миграции прикрутить людские). Обязательно сделаю.
func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ShortLink{}, &models.ScanEvent{}, &models.Plan{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
