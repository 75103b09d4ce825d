package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// Config represents the complete tmon configuration.
type Config struct {
	Version     int           `yaml:"version" mapstructure:"version"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	Host        string        `yaml:"host,omitempty" mapstructure:"host"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
	Graph       GraphConfig   `yaml:"graph" mapstructure:"graph"`
	Alert       AlertConfig   `yaml:"alert" mapstructure:"alert"`
	Process     ProcessConfig `yaml:"process" mapstructure:"process"`
	Network     NetworkConfig `yaml:"network" mapstructure:"network"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// GraphConfig controls graph dimensions.
type GraphConfig struct {
	// Height is the number of graph rows.
	Height int `yaml:"height" mapstructure:"height"`

	// Width is the number of history columns. Zero fits the terminal.
	Width int `yaml:"width" mapstructure:"width"`
}

// AlertConfig controls the audible threshold warning.
type AlertConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Threshold int           `yaml:"threshold" mapstructure:"threshold"`
	Pulses    int           `yaml:"pulses" mapstructure:"pulses"`
	Gap       time.Duration `yaml:"gap" mapstructure:"gap"`
}

// ProcessConfig controls the process panel.
type ProcessConfig struct {
	// Top is how many processes (by CPU share) get I/O tracking.
	Top int `yaml:"top" mapstructure:"top"`
}

// NetworkConfig controls the network panel.
type NetworkConfig struct {
	IncludeLoopback bool `yaml:"include_loopback" mapstructure:"include_loopback"`
}

// LogConfig controls the log file sink.
type LogConfig struct {
	File  string `yaml:"file,omitempty" mapstructure:"file"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// Defaults and bounds.
const (
	DefaultInterval  = time.Second
	MinInterval      = 250 * time.Millisecond
	DefaultHeight    = 10
	MaxHeight        = 200
	DefaultThreshold = 85
	DefaultPulses    = 3
	DefaultPulseGap  = 150 * time.Millisecond
	DefaultTopN      = 35
	MaxTopN          = 500
)

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Interval: DefaultInterval,
		Graph: GraphConfig{
			Height: DefaultHeight,
		},
		Alert: AlertConfig{
			Enabled:   true,
			Threshold: DefaultThreshold,
			Pulses:    DefaultPulses,
			Gap:       DefaultPulseGap,
		},
		Process: ProcessConfig{
			Top: DefaultTopN,
		},
	}
}
