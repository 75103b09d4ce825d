package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Durations are written as strings so the
// file stays readable ("1s" rather than 1000000000).
type fileConfig struct {
	Version     int    `yaml:"version"`
	Interval    string `yaml:"interval"`
	Host        string `yaml:"host,omitempty"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	Graph       struct {
		Height int `yaml:"height"`
		Width  int `yaml:"width"`
	} `yaml:"graph"`
	Alert struct {
		Enabled   bool   `yaml:"enabled"`
		Threshold int    `yaml:"threshold"`
		Pulses    int    `yaml:"pulses"`
		Gap       string `yaml:"gap"`
	} `yaml:"alert"`
	Process ProcessConfig `yaml:"process"`
	Network NetworkConfig `yaml:"network"`
	Log     LogConfig     `yaml:"log"`
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var f fileConfig
	f.Version = cfg.Version
	f.Interval = cfg.Interval.String()
	f.Host = cfg.Host
	f.MetricsAddr = cfg.MetricsAddr
	f.Graph.Height = cfg.Graph.Height
	f.Graph.Width = cfg.Graph.Width
	f.Alert.Enabled = cfg.Alert.Enabled
	f.Alert.Threshold = cfg.Alert.Threshold
	f.Alert.Pulses = cfg.Alert.Pulses
	f.Alert.Gap = cfg.Alert.Gap.String()
	f.Process = cfg.Process
	f.Network = cfg.Network
	f.Log = cfg.Log

	out, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// Save validates cfg and writes it to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
