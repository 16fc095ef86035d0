// Package config loads ledger settings from defaults, a YAML file, LEDGER_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/core/domain"
)

const (
	DefaultConfigFile = "ledger.yaml"
	DefaultThreshold  = "5"
	DefaultLogLevel   = "info"
	envPrefix         = "LEDGER_"
)

type Config struct {
	File              string      `koanf:"file"`
	LowStockThreshold string      `koanf:"low_stock_threshold"`
	LogLevel          string      `koanf:"log_level"`
	Redis             RedisConfig `koanf:"redis"`
	MySQL             MySQLConfig `koanf:"mysql"`
}

type RedisConfig struct {
	Addr        string `koanf:"addr"`
	StockPrefix string `koanf:"stock_prefix"`
	LogKey      string `koanf:"log_key"`
}

type MySQLConfig struct {
	DSN string `koanf:"dsn"`
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"file":       "file",
	"threshold":  "low_stock_threshold",
	"log-level":  "log_level",
	"redis-addr": "redis.addr",
	"mysql-dsn":  "mysql.dsn",
}

// Load reads the configuration. cfgFile may be empty, in which case
// ledger.yaml is used when present in the working directory. Only flags that
// were explicitly set override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"file":                domain.DefaultFile,
		"low_stock_threshold": DefaultThreshold,
		"log_level":           DefaultLogLevel,
		"redis.stock_prefix":  storage.DefaultStockKeyPrefix,
		"redis.log_key":       storage.DefaultLogKey,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns LEDGER_REDIS_ADDR into redis.addr and LEDGER_LOG_LEVEL into
// log_level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"redis_", "mysql_"} {
		if strings.HasPrefix(key, section) {
			return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
		}
	}
	return key
}

func (c *Config) Validate() error {
	if domain.IsBlank(c.File) {
		return fmt.Errorf("file: %w", domain.ErrEmptyName)
	}
	if _, err := c.Threshold(); err != nil {
		return fmt.Errorf("low_stock_threshold: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Threshold returns the default low-stock threshold.
func (c *Config) Threshold() (domain.Quantity, error) {
	q, err := domain.ParseQuantity(c.LowStockThreshold)
	if err != nil {
		return domain.Quantity{}, err
	}
	if q.IsNegative() {
		return domain.Quantity{}, fmt.Errorf("%w: threshold must be non-negative, got %s", domain.ErrInvalidQuantity, q)
	}
	return q, nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
