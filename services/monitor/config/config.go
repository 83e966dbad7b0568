package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BudgetConfig overrides any subset of the default performance budget.
// Unset values keep the built-in defaults.
type BudgetConfig struct {
	Lcp         *float64 `toml:"Lcp"`
	Fid         *float64 `toml:"Fid"`
	Cls         *float64 `toml:"Cls"`
	Fcp         *float64 `toml:"Fcp"`
	Ttfb        *float64 `toml:"Ttfb"`
	BundleSize  *int64   `toml:"BundleSize"`
	ImageCount  *int     `toml:"ImageCount"`
	ScriptCount *int     `toml:"ScriptCount"`
}

// Config maps to the config.toml file for the vitals monitor
type Config struct {
	Name                      string       `toml:"Name"`
	PageURL                   string       `toml:"PageURL"`
	UserAgent                 string       `toml:"UserAgent"`
	ReportAllChanges          bool         `toml:"ReportAllChanges"`
	AnalyticsEndpoint         string       `toml:"AnalyticsEndpoint"`
	ReportTimeoutInSeconds    uint32       `toml:"ReportTimeoutInSeconds"`
	SnapshotIntervalInSeconds uint32       `toml:"SnapshotIntervalInSeconds"`
	Budget                    BudgetConfig `toml:"Budget"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
