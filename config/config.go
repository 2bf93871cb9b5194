// Package config loads process-wide overrides for SciCxx engine defaults.
//
// Every engine ships its own compiled-in defaults, so a configuration
// file is never required. When SCICXX_CONFIG points at a
// directory containing conf.toml, Settings() loads it once and engine
// constructors may consult it for overridden tolerances or table paths.
package config

import (
	"os"
	"sync"

	"github.com/spf13/viper"
)

// Bundle is the lazily-loaded settings bundle.
type Bundle struct {
	// TablesDir overrides where bundled numeric tables (Gauss-Kronrod,
	// Newton-Cotes, Kepler HKE-SDG segmentation) are searched for before
	// falling back to the compiled-in tables.
	TablesDir string
	// DefaultAbsTolNLog and DefaultRelTolNLog override the negative-log
	// absolute/relative tolerance used by engines that don't receive an
	// explicit tolerance from their caller. Zero means "use the engine's
	// own compiled-in default".
	DefaultAbsTolNLog float64
	DefaultRelTolNLog float64
}

var (
	once   sync.Once
	bundle Bundle
)

// Settings returns the process-wide settings bundle, loading it from
// SCICXX_CONFIG/conf.toml on first call. Safe to call from multiple
// goroutines; loads at most once.
func Settings() Bundle {
	once.Do(load)
	return bundle
}

func load() {
	confPath := os.Getenv("SCICXX_CONFIG")
	if confPath == "" {
		return // compiled-in defaults only
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		// No config file at that path is not fatal: the library still
		// has compiled-in defaults for every tunable.
		return
	}
	bundle = Bundle{
		TablesDir:         viper.GetString("tables.directory"),
		DefaultAbsTolNLog: viper.GetFloat64("tolerances.abs_nlog"),
		DefaultRelTolNLog: viper.GetFloat64("tolerances.rel_nlog"),
	}
}
