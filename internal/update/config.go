package update

import (
	"time"

	"github.com/sandeepkv93/contribd/internal/config"
)

type RuntimeConfig struct {
	CheckInterval time.Duration
	InitialDelay  time.Duration
	ListWidth     int
	ListHeight    int
	DetailsHeight int
	// DesktopNotify sends found updates to the desktop notifier as well.
	DesktopNotify bool
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		CheckInterval: 6 * time.Hour,
		InitialDelay:  5 * time.Second,
		ListWidth:     72,
		ListHeight:    12,
		DetailsHeight: 10,
	}
}

// RuntimeConfigFrom takes the UI-relevant settings from the loaded config.
// Unset values keep their defaults.
func RuntimeConfigFrom(base RuntimeConfig, cfg config.Config) RuntimeConfig {
	out := base
	if cfg.Update.CheckInterval > 0 {
		out.CheckInterval = cfg.Update.CheckInterval
	}
	if cfg.Update.InitialDelay >= 0 {
		out.InitialDelay = cfg.Update.InitialDelay
	}
	out.DesktopNotify = cfg.Notify.Desktop
	return out
}
