// Package settings loads process settings: which kv backend holds the
// provider record and history, where the HTTP bridge listens and how logs
// look. Values come from defaults, an optional sqlcopilot.yaml and
// SQLCOPILOT_* environment variables, in increasing priority.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/leofalp/sqlcopilot/providers/observability/slogobs"
)

const (
	envPrefix  = "SQLCOPILOT"
	configName = "sqlcopilot"
	appDir     = "sqlcopilot"
)

// EnvConfigFile names an explicit settings file. A missing explicit file is
// an error, unlike the implicit search.
const EnvConfigFile = "SQLCOPILOT_CONFIG"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Settings struct {
	Store  StoreSettings  `mapstructure:"store"`
	Server ServerSettings `mapstructure:"server"`
	Log    LogSettings    `mapstructure:"log"`
}

type StoreSettings struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory file sqlite redis"`

	// Path is the JSON file or sqlite database. Empty picks a file under the
	// user config directory.
	Path string `mapstructure:"path"`

	RedisAddr     string `mapstructure:"redis_addr"     validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"       validate:"gte=0"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"  validate:"loglevel"`
	Format string `mapstructure:"format" validate:"oneof=compact json"`
}

// Load reads settings. configFile, when non-empty, overrides
// SQLCOPILOT_CONFIG; with neither set, sqlcopilot.yaml is looked up in the
// working directory and then the user config directory, and may be absent.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appDir))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read settings: %w", err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	settings.Store.Backend = strings.ToLower(strings.TrimSpace(settings.Store.Backend))
	settings.Log.Format = strings.ToLower(strings.TrimSpace(settings.Log.Format))
	if settings.Store.Path == "" {
		settings.Store.Path = defaultPath(settings.Store.Backend)
	}

	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks settings with their struct tags.
func Validate(settings *Settings) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, ok := slogobs.ParseLevel(fl.Field().String())
	return ok
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "sqlcopilot:")
	v.SetDefault("server.addr", "127.0.0.1:8765")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(slogobs.FormatCompact))
}

// defaultPath returns the per-user location for file-backed stores.
func defaultPath(backend string) string {
	var name string
	switch backend {
	case BackendFile:
		name = "store.json"
	case BackendSQLite:
		name = "store.db"
	default:
		return ""
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDir, name)
}
