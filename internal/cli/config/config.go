package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// FileName is the config file looked up by Load, without extension.
const FileName = "assets"

// EnvPrefix prefixes every environment override, e.g. ASSETS_SOURCE_ROOT.
const EnvPrefix = "ASSETS"

// Config represents the asset service configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// SourceConfig selects where assets are read from
type SourceConfig struct {
	// Kind is "file" or "archive"
	Kind string `mapstructure:"kind"`
	// Root is the directory served by the file source
	Root string `mapstructure:"root"`
}

// ArchiveConfig configures the archive backing an archive source
type ArchiveConfig struct {
	// Backend is "memory", "sqlite", "postgres" or "redis"
	Backend string        `mapstructure:"backend"`
	// Driver picks the postgres driver: "pgx" (default) or "pq"
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Table   string        `mapstructure:"table"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the redis archive backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`

	// CORSOrigins lists origins allowed to call the API from a browser
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from assets.yml in the current directory or
// the nearest parent that has one. A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if root, err := FindRoot(); err == nil {
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}
	return decode(v)
}

// LoadFile loads the configuration from an explicit file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("source.kind", "file")
	v.SetDefault("source.root", "assets")
	v.SetDefault("archive.backend", "sqlite")
	v.SetDefault("archive.dsn", "assets.db")
	v.SetDefault("archive.table", "sqlar")
	v.SetDefault("archive.timeout", 5*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "assets:archive")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// FindRoot walks up from the working directory to the first directory
// holding assets.yml or assets.yaml
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s.yml found", FileName)
		}
		dir = parent
	}
}

// Validate checks the configuration, e.g. after flag overrides
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case "file":
		if cfg.Source.Root == "" {
			return fmt.Errorf("source.root is required for the file source")
		}
	case "archive":
		switch cfg.Archive.Backend {
		case "memory", "redis":
		case "sqlite", "postgres":
			if cfg.Archive.DSN == "" {
				return fmt.Errorf("archive.dsn is required for the %s backend", cfg.Archive.Backend)
			}
			if cfg.Archive.Backend == "postgres" {
				switch cfg.Archive.Driver {
				case "", "pgx", "pq":
				default:
					return fmt.Errorf("archive.driver must be pgx or pq, got: %s", cfg.Archive.Driver)
				}
			}
		default:
			return fmt.Errorf("archive.backend must be memory, sqlite, postgres or redis, got: %s", cfg.Archive.Backend)
		}
	default:
		return fmt.Errorf("source.kind must be file or archive, got: %s", cfg.Source.Kind)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got: %d", cfg.Server.Port)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
