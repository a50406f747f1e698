package config

import (
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type DBType string

const (
	DBTypePostgres DBType = "postgres"
	DBTypeSQLite   DBType = "sqlite"
	DBTypeInMemory DBType = "inMemory"
)

type Config struct {
	// Порт на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Тип хранилища
	DBType DBType `env:"DB" envDefault:"inMemory"` // через флаги не настраиваю, незачем
	// DSN для postgres (нужен только при DB=postgres)
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Путь к файлу sqlite (нужен только при DB=sqlite)
	SQLitePath string `env:"SQLITE_PATH" envDefault:"qrshort.db"`
	// Путь к базе GeoLite2-City. Пусто - гео не обогащаем.
	GeoDBPath string `env:"GEO_DB_PATH"`

	// Кеш резолюций
	CacheCapacity int           `env:"CACHE_CAPACITY" envDefault:"16384"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	NegativeTTL   time.Duration `env:"CACHE_NEGATIVE_TTL" envDefault:"5s"`
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"500ms"`

	// Запись событий сканирования
	SinkQueueSize     int           `env:"SINK_QUEUE_SIZE" envDefault:"4096"`
	SinkBatchSize     int           `env:"SINK_BATCH_SIZE" envDefault:"128"`
	SinkFlushInterval time.Duration `env:"SINK_FLUSH_INTERVAL" envDefault:"2s"`
	SinkMaxRetries    uint64        `env:"SINK_MAX_RETRIES" envDefault:"3"`

	// Квоты
	QuotaRefreshInterval time.Duration `env:"QUOTA_REFRESH_INTERVAL" envDefault:"15s"`

	Logger *logrus.Logger
}

func LoadConfig() (*Config, error) {
	var flagsConfig Config
	var envConfig Config
	logger := initLogger()

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	loadsFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	conf.Logger = logger
	return conf, nil
}

// loadsFlags парсит флаги командной строки.
func loadsFlags(flagsConfig *Config) {
	flag.StringVar(&flagsConfig.ServerAddress, "a", "localhost:8080", "Адрес сервера")
	flag.StringVar(&flagsConfig.DatabaseDSN, "d", "", "DSN для postgres")
	flag.StringVar(&flagsConfig.SQLitePath, "f", "", "Путь к файлу sqlite")
	flag.StringVar(&flagsConfig.GeoDBPath, "g", "", "Путь к базе GeoLite2-City")

	flag.Parse()
}

// mergeConfig сливает структуры для env и флагов. Настройки кеша,
// очереди и квот задаются только через ENV.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	merged := *envConfig
	merged.ServerAddress = defaultIfBlank(envConfig.ServerAddress, flagsConfig.ServerAddress)
	merged.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	merged.SQLitePath = defaultIfBlank(envConfig.SQLitePath, flagsConfig.SQLitePath)
	merged.GeoDBPath = defaultIfBlank(envConfig.GeoDBPath, flagsConfig.GeoDBPath)
	return &merged
}

func defaultIfBlank[T comparable](value T, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
