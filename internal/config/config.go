package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers.
const (
	DriverMemory     = "memory"
	DriverPostgres   = "postgres"
	DriverClickHouse = "clickhouse"
	DriverSQLite     = "sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// StoreConfig selects the sample store driver and its connection settings.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	PostgresDSN   string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn" mapstructure:"clickhouse_dsn"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LogConfig controls the zap logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MetricsConfig is the Prometheus listener and metric namespace.
type MetricsConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// Load reads config.yaml from the working directory if present, then
// applies PVT_* environment overrides (PVT_STORE_DRIVER, PVT_LOG_LEVEL, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PVT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.clickhouse_dsn", "")
	v.SetDefault("store.sqlite_path", "pvt.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.namespace", "pvt_resolver")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return eris.New("config: store.postgres_dsn is required for the postgres driver")
		}
	case DriverClickHouse:
		if c.Store.ClickHouseDSN == "" {
			return eris.New("config: store.clickhouse_dsn is required for the clickhouse driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return eris.New("config: store.sqlite_path is required for the sqlite driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
