package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rmercier/quantctl/market"
)

// Config is the full controller configuration.
type Config struct {
	Instrument string        `json:"instrument" yaml:"instrument"`
	Trading    TradingConfig `json:"trading" yaml:"trading"`
	Signal     SignalConfig  `json:"signal" yaml:"signal"`
	Journal    JournalConfig `json:"journal" yaml:"journal"`
	Metrics    MetricsConfig `json:"metrics" yaml:"metrics"`
	Log        LogConfig     `json:"log" yaml:"log"`
	Paper      PaperConfig   `json:"paper" yaml:"paper"`
}

// TradingConfig holds the decision and risk parameters.
type TradingConfig struct {
	Lots            float64 `json:"lots" yaml:"lots"`
	ZThreshold      float64 `json:"z_threshold" yaml:"z_threshold"`
	MinRecoveryPips float64 `json:"min_recovery_pips" yaml:"min_recovery_pips"`
	MaxLoss         float64 `json:"max_loss" yaml:"max_loss"`
	MaxProfit       float64 `json:"max_profit" yaml:"max_profit"`
	OwnerTag        int64   `json:"owner_tag" yaml:"owner_tag"`
	MaxPositions    int     `json:"max_positions" yaml:"max_positions"`
}

// SignalConfig points at the analytics service.
type SignalConfig struct {
	Addr          string `json:"addr" yaml:"addr"`
	FetchInterval string `json:"fetch_interval" yaml:"fetch_interval"` // e.g. "10s"
	ReadTimeout   string `json:"read_timeout" yaml:"read_timeout"`    // e.g. "1s"
	HistoryBars   int    `json:"history_bars" yaml:"history_bars"`
}

func (s SignalConfig) ParseFetchInterval() (time.Duration, error) {
	if s.FetchInterval == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(s.FetchInterval)
}

func (s SignalConfig) ParseReadTimeout() (time.Duration, error) {
	if s.ReadTimeout == "" {
		return time.Second, nil
	}
	return time.ParseDuration(s.ReadTimeout)
}

// JournalConfig selects a journaling backend.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrdersFile  string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	SignalsFile string `json:"signals_file,omitempty" yaml:"signals_file,omitempty"`
	EventsFile  string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
}

type MetricsConfig struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"` // empty disables the endpoint
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // zerolog level names
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// PaperConfig scripts the price sequence used by the run command.
type PaperConfig struct {
	InitialBid       float64     `json:"initial_bid" yaml:"initial_bid"`
	InitialAsk       float64     `json:"initial_ask" yaml:"initial_ask"`
	CommissionPerLot float64     `json:"commission_per_lot" yaml:"commission_per_lot"`
	Steps            []PriceStep `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// PriceStep is one scripted price update.
type PriceStep struct {
	Bid   float64 `json:"bid" yaml:"bid"`
	Ask   float64 `json:"ask" yaml:"ask"`
	Delay string  `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "1s", "500ms"
}

func (ps PriceStep) ParseDelay() (time.Duration, error) {
	if ps.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(ps.Delay)
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
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

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Instrument == "" {
		return fmt.Errorf("instrument is required")
	}
	if _, ok := market.Instruments[c.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Instrument)
	}
	if c.Trading.Lots <= 0 {
		return fmt.Errorf("trading.lots must be positive")
	}
	if c.Trading.ZThreshold <= 0 {
		return fmt.Errorf("trading.z_threshold must be positive")
	}
	if c.Trading.MinRecoveryPips < 0 {
		return fmt.Errorf("trading.min_recovery_pips must not be negative")
	}
	if c.Trading.MaxLoss <= 0 || c.Trading.MaxProfit <= 0 {
		return fmt.Errorf("trading.max_loss and trading.max_profit must be positive")
	}
	if c.Trading.MaxPositions <= 0 {
		return fmt.Errorf("trading.max_positions must be positive")
	}
	if _, err := c.Signal.ParseFetchInterval(); err != nil {
		return fmt.Errorf("signal.fetch_interval: %w", err)
	}
	if _, err := c.Signal.ParseReadTimeout(); err != nil {
		return fmt.Errorf("signal.read_timeout: %w", err)
	}
	if c.Signal.HistoryBars < 0 || c.Signal.HistoryBars > 100 {
		return fmt.Errorf("signal.history_bars must be in [0,100]")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.SignalsFile == "" || c.Journal.EventsFile == "" {
			return fmt.Errorf("journal orders_file, signals_file and events_file required for csv type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	for i, step := range c.Paper.Steps {
		if step.Bid <= 0 || step.Ask <= step.Bid {
			return fmt.Errorf("paper.steps[%d]: need 0 < bid < ask", i)
		}
		if _, err := step.ParseDelay(); err != nil {
			return fmt.Errorf("paper.steps[%d].delay: %w", i, err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Instrument: "EUR_USD",
		Trading: TradingConfig{
			Lots:            0.1,
			ZThreshold:      2.0,
			MinRecoveryPips: 15,
			MaxLoss:         1000,
			MaxProfit:       2000,
			OwnerTag:        777,
			MaxPositions:    3,
		},
		Signal: SignalConfig{
			Addr:          "localhost:5555",
			FetchInterval: "10s",
			ReadTimeout:   "1s",
			HistoryBars:   100,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./quantctl.sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Paper: PaperConfig{
			InitialBid: 1.0849,
			InitialAsk: 1.0851,
		},
	}
}
