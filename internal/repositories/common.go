package repositories

// BatchWriteScansResult результат батчевой записи событий сканирования.
// Запись идемпотентна по ID события: дубликаты не считаются ошибкой.
type BatchWriteScansResult struct {
	Written    int
	Duplicates int
}
