// Package config loads formcloud settings from flags, FORMCLOUD_* environment
// variables, .env files, a formcloud.yaml file and built-in defaults, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formcloud/pkg/flash"
	"github.com/goliatone/go-formcloud/pkg/logging"
)

// EnvPrefix namespaces environment variables: store.driver is read from
// FORMCLOUD_STORE_DRIVER.
const EnvPrefix = "FORMCLOUD"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the resolved settings.
type Config struct {
	ConfigFile string

	FormsDir string

	Store StoreConfig
	HTTP  HTTPConfig

	FlashDuration time.Duration
	HashPasswords bool
	PasswordCost  int
	Log           logging.Config
}

// StoreConfig selects the answer store.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit config path. When empty formcloud.yaml is
	// searched in SearchPaths.
	ConfigFile  string
	SearchPaths []string
	// EnvFiles are loaded with godotenv before reading the environment.
	// Variables already set are not overridden.
	EnvFiles []string
	// Flags are bound by key, e.g. a "forms-dir" flag overrides forms_dir.
	Flags *pflag.FlagSet
}

// DefaultOptions searches the working directory and $HOME and loads .env and
// .env.local.
func DefaultOptions() Options {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return Options{
		SearchPaths: paths,
		EnvFiles:    []string{".env", ".env.local"},
	}
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"forms-dir":      "forms_dir",
	"store":          "store.driver",
	"sqlite-path":    "store.sqlite_path",
	"postgres-dsn":   "store.postgres_dsn",
	"addr":           "http.addr",
	"hash-passwords": "security.hash_passwords",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"log-output":     "log.output",
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", opts.ConfigFile, err)
		}
	} else if len(opts.SearchPaths) > 0 {
		v.SetConfigName("formcloud")
		v.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),
		FormsDir:   v.GetString("forms_dir"),
		Store: StoreConfig{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
			SQLitePath:  v.GetString("store.sqlite_path"),
			PostgresDSN: v.GetString("store.postgres_dsn"),
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("http.addr"),
		},
		FlashDuration: v.GetDuration("flash.duration"),
		HashPasswords: v.GetBool("security.hash_passwords"),
		PasswordCost:  v.GetInt("security.password_cost"),
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the store settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("config: store.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.FlashDuration <= 0 {
		return fmt.Errorf("config: flash.duration must be positive, got %s", c.FlashDuration)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("forms_dir", "forms")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "formcloud.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("flash.duration", flash.DefaultDelay)
	v.SetDefault("security.hash_passwords", false)
	v.SetDefault("security.password_cost", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// loadEnvFiles loads .env files in order; missing files are ignored.
func loadEnvFiles(files []string) {
	for _, file := range files {
		_ = godotenv.Load(file)
	}
}
