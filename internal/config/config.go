// Package config loads contribd settings from defaults, an optional YAML
// file and CONTRIBD_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "CONTRIBD"

type Config struct {
	Listing    ListingConfig
	Sketchbook SketchbookConfig
	Database   DatabaseConfig
	Log        LogConfig
	Update     UpdateConfig
	Scheduler  SchedulerConfig
	Notify     NotifyConfig
}

// ListingConfig says where the contribution listing is fetched from. URL
// may be http(s), file:// or a plain path.
type ListingConfig struct {
	URL     string
	Timeout time.Duration
}

type SketchbookConfig struct {
	Path string
	Mode string
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Path  string
	Level string
}

type UpdateConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
}

type SchedulerConfig struct {
	Buffer int
}

// NotifyConfig turns on desktop notifications for found updates.
type NotifyConfig struct {
	Desktop bool
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// Load reads configuration from file and env. Env var overrides use prefix
// CONTRIBD_, with dots in keys replaced by underscores.
func Load() (Config, error) {
	v := viper.New()
	home := homeDir()
	dataDir := filepath.Join(home, ".local", "share", "contribd")

	v.SetDefault("listing.url", "https://contributions.processing.org/contribs.yml")
	v.SetDefault("listing.timeout", 30*time.Second)
	v.SetDefault("sketchbook.path", filepath.Join(home, "sketchbook"))
	v.SetDefault("sketchbook.mode", "java")
	v.SetDefault("database.path", filepath.Join(dataDir, "contribd.db"))
	v.SetDefault("log.path", filepath.Join(dataDir, "contribd.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("update.check_interval", 6*time.Hour)
	v.SetDefault("update.initial_delay", 5*time.Second)
	v.SetDefault("scheduler.buffer", 64)
	v.SetDefault("notify.desktop", false)

	v.SetConfigType("yaml")
	if cfgPath := os.Getenv(EnvPrefix + "_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "contribd"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Sketchbook.Path = expandHome(c.Sketchbook.Path, home)
	c.Database.Path = expandHome(c.Database.Path, home)
	c.Log.Path = expandHome(c.Log.Path, home)
	return c, c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Listing.URL) == "" {
		errs = append(errs, errors.New("listing.url is required"))
	}
	if c.Listing.Timeout <= 0 {
		errs = append(errs, errors.New("listing.timeout must be positive"))
	}
	if strings.TrimSpace(c.Sketchbook.Path) == "" {
		errs = append(errs, errors.New("sketchbook.path is required"))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Update.CheckInterval <= 0 {
		errs = append(errs, errors.New("update.check_interval must be positive"))
	}
	if c.Update.InitialDelay < 0 {
		errs = append(errs, errors.New("update.initial_delay must not be negative"))
	}
	if c.Scheduler.Buffer <= 0 {
		errs = append(errs, errors.New("scheduler.buffer must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
