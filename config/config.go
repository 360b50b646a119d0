package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Store    StoreConfig
	Catalog  CatalogConfig
	HTTP     HTTPConfig
	I18n     I18nConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	// DiagnosticsTopic receives fallback-price, exchange-rate and
	// change-detected events.
	DiagnosticsTopic string
	PublishTimeout   time.Duration
}

type ElasticsearchConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
}

type StoreConfig struct {
	Driver      string // postgres | memory
	FixturePath string // YAML snapshot for the memory driver
}

type CatalogConfig struct {
	CacheBackend        string // memory | redis
	CacheTTL            time.Duration
	CacheSweepInterval  time.Duration
	SelectiveFetchCap   int
	SerialCap           int
	ChangeScanLimit     int
	CustomerChangeLimit int
	ChangeLookback      time.Duration
	EnrichWorkers       int
	CurrencyPrecision   int
	SearchIndex         string
}

type HTTPConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

type I18nConfig struct {
	LocalesDir  string
	DefaultLang string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
			HTTPPort: getEnv("HTTP_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_catalog"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:          getEnvBool("KAFKA_ENABLED", false),
			Brokers:          getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			DiagnosticsTopic: getEnv("KAFKA_TOPIC_CATALOG_DIAGNOSTICS", "catalog.diagnostics"),
			PublishTimeout:   getEnvDuration("KAFKA_PUBLISH_TIMEOUT", 2*time.Second),
		},
		Elastic: ElasticsearchConfig{
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", "postgres"),
			FixturePath: getEnv("STORE_FIXTURE_PATH", ""),
		},
		Catalog: CatalogConfig{
			CacheBackend:        getEnv("CATALOG_CACHE_BACKEND", "memory"),
			CacheTTL:            getEnvDuration("CATALOG_CACHE_TTL", 60*time.Second),
			CacheSweepInterval:  getEnvDuration("CATALOG_CACHE_SWEEP_INTERVAL", 5*time.Minute),
			SelectiveFetchCap:   getEnvInt("SELECTIVE_FETCH_CAP", 100),
			SerialCap:           getEnvInt("SELECTIVE_FETCH_SERIAL_CAP", 100),
			ChangeScanLimit:     getEnvInt("CHANGE_SCAN_LIMIT", 100),
			CustomerChangeLimit: getEnvInt("CUSTOMER_CHANGE_LIMIT", 50),
			ChangeLookback:      getEnvDuration("CHANGE_LOOKBACK", 24*time.Hour),
			EnrichWorkers:       getEnvInt("CATALOG_ENRICH_WORKERS", 8),
			CurrencyPrecision:   getEnvInt("CURRENCY_PRECISION", 2),
			SearchIndex:         getEnv("CATALOG_SEARCH_INDEX", "catalog_items"),
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   getEnvFloat("HTTP_RATE_LIMIT_RPS", 20),
			RateLimitBurst: getEnvInt("HTTP_RATE_LIMIT_BURST", 40),
		},
		I18n: I18nConfig{
			LocalesDir:  getEnv("I18N_LOCALES_DIR", ""),
			DefaultLang: getEnv("I18N_DEFAULT_LANG", "en"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or whole seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
