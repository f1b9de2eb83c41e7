// Package config loads settings from defaults, an optional config.yaml in the
// application config directory, HIBIDASH_* environment variables and command
// line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName    = "hibidash"
	EnvPrefix  = "HIBIDASH"
	ConfigName = "config"
)

type Config struct {
	DB        string        `mapstructure:"db"`
	Session   string        `mapstructure:"session"`
	ExportDir string        `mapstructure:"export_dir"`
	Watch     bool          `mapstructure:"watch"`
	Log       LogConfig     `mapstructure:"log"`
	Auth      AuthConfig    `mapstructure:"auth"`
	Debounce  time.Duration `mapstructure:"watch_debounce"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// Dir returns ~/.config/hibidash (or the platform equivalent).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func setDefaults(v *viper.Viper, dir string) {
	home, _ := os.UserHomeDir()
	v.SetDefault("db", filepath.Join(dir, AppName+".db"))
	v.SetDefault("session", filepath.Join(dir, "session"))
	v.SetDefault("export_dir", home)
	v.SetDefault("watch", true)
	v.SetDefault("watch_debounce", 300*time.Millisecond)
	v.SetDefault("log.file", filepath.Join(dir, AppName+".log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
}

// Loader reads configuration with viper.
type Loader struct {
	logger *slog.Logger
	dir    string
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// WithDir overrides the directory searched for config.yaml and used for
// default file locations.
func (l *Loader) WithDir(dir string) *Loader {
	l.dir = dir
	return l
}

// Load builds the Config. explicitFile, when set, must exist. flags may be nil;
// any flag named like a config key overrides it once changed.
func (l *Loader) Load(explicitFile string, flags *pflag.FlagSet) (*Config, error) {
	dir := l.dir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		l.logger.Debug("No config file found", slog.String("dir", dir))
	} else {
		l.logger.Debug("Loaded config", slog.String("path", v.ConfigFileUsed()))
	}

	if flags != nil {
		for _, key := range []string{"db", "watch"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("config: db path is empty")
	}
	if c.Session == "" {
		return fmt.Errorf("config: session path is empty")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config: watch_debounce must not be negative")
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", s)
	}
	return lvl, nil
}
