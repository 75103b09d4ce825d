package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/rileyhilliard/tmon/internal/config"
)

// GlobalFlags holds the flags shared by every command.
type GlobalFlags struct {
	Config          string
	Debug           bool
	Interval        time.Duration
	Height          int
	Width           int
	Threshold       int
	NoAlert         bool
	Top             int
	Host            string
	MetricsAddr     string
	IncludeLoopback bool
}

var globalFlags GlobalFlags

// AddGlobalFlags registers the global flags on fs.
func AddGlobalFlags(fs *pflag.FlagSet, f *GlobalFlags) {
	fs.StringVar(&f.Config, "config", "", "config file (default: ./.tmon.yaml or ~/.config/tmon/config.yaml)")
	fs.BoolVar(&f.Debug, "debug", false, "write debug lines to the log file")
	fs.DurationVarP(&f.Interval, "interval", "i", config.DefaultInterval, "time between samples (e.g., 500ms, 2s)")
	fs.IntVar(&f.Height, "height", config.DefaultHeight, "graph height in rows")
	fs.IntVar(&f.Width, "width", 0, "graph width in columns (0 fits the terminal)")
	fs.IntVar(&f.Threshold, "threshold", config.DefaultThreshold, "alert threshold in percent")
	fs.BoolVar(&f.NoAlert, "no-alert", false, "disable the audible alert")
	fs.IntVar(&f.Top, "top", config.DefaultTopN, "number of processes to list")
	fs.StringVarP(&f.Host, "host", "H", "", "monitor a remote Linux host over SSH (alias, user@host or host:port)")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9105)")
	fs.BoolVar(&f.IncludeLoopback, "include-loopback", false, "count loopback traffic in network totals")
}

// ApplyOverrides copies every flag the user set explicitly onto cfg.
// Flags left at their defaults never mask config or environment values.
func ApplyOverrides(fs *pflag.FlagSet, f GlobalFlags, cfg *config.Config) {
	if fs.Changed("debug") {
		cfg.Log.Debug = f.Debug
	}
	if fs.Changed("interval") {
		cfg.Interval = f.Interval
	}
	if fs.Changed("height") {
		cfg.Graph.Height = f.Height
	}
	if fs.Changed("width") {
		cfg.Graph.Width = f.Width
	}
	if fs.Changed("threshold") {
		cfg.Alert.Threshold = f.Threshold
	}
	if fs.Changed("no-alert") {
		cfg.Alert.Enabled = !f.NoAlert
	}
	if fs.Changed("top") {
		cfg.Process.Top = f.Top
	}
	if fs.Changed("host") {
		cfg.Host = f.Host
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.MetricsAddr
	}
	if fs.Changed("include-loopback") {
		cfg.Network.IncludeLoopback = f.IncludeLoopback
	}
}

// loadConfig loads the config named by --config (or the default search
// path), applies flag overrides from fs and validates the result.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(globalFlags.Config)
	if err != nil {
		return nil, err
	}
	ApplyOverrides(fs, globalFlags, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
