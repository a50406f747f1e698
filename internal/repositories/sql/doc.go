// Package sql предоставляет реализации репозиториев поверх gorm
// (PostgreSQL и SQLite).
//
// Все методы репозиториев преобразуют ошибки драйвера в общие ошибки уровня репозитория
// с помощью ConvertErrorType:
//   - gorm.ErrDuplicatedKey -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql
