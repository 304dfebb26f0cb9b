// Package config loads simulation configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/quantsim/sim"
)

// Config represents the complete simulation configuration.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// SimulationConfig contains the account and cost parameters.
type SimulationConfig struct {
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	PositionFraction float64 `json:"position_fraction" yaml:"position_fraction"`
	CommissionRate   float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageRate     float64 `json:"slippage_rate" yaml:"slippage_rate"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"` // "csv" or "sqlite"
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty" yaml:"pretty,omitempty"`
}

// Default returns the standard configuration: 100k starting capital, 10%
// position sizing, 10bp commission and 10bp slippage.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			InitialCapital:   100000,
			PositionFraction: 0.1,
			CommissionRate:   0.001,
			SlippageRate:     0.001,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (.yaml/.yml) or indented JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Sim().Validate(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("journal.type must be csv or sqlite, got %q", c.Journal.Type)
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required for the sqlite journal")
	}
	return nil
}

// Sim converts the simulation section into engine parameters.
func (c *Config) Sim() sim.Config {
	return sim.Config{
		InitialCapital:   c.Simulation.InitialCapital,
		PositionFraction: c.Simulation.PositionFraction,
		CommissionRate:   c.Simulation.CommissionRate,
		SlippageRate:     c.Simulation.SlippageRate,
	}
}
