package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/tmon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig, "No config loaded", "")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but tmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade tmon or lower the version field")
	}

	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", cfg.Interval),
			fmt.Sprintf("Minimum interval is %s so sampling doesn't swamp the host", MinInterval))
	}

	if cfg.Graph.Height < 1 || cfg.Graph.Height > MaxHeight {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("graph.height %d is out of range", cfg.Graph.Height),
			fmt.Sprintf("Pick a height between 1 and %d rows", MaxHeight))
	}

	if cfg.Graph.Width < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("graph.width %d can't be negative", cfg.Graph.Width),
			"Use 0 to fit the terminal width")
	}

	if err := validateAlert(cfg.Alert); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'alert' section in your config.")
	}

	if cfg.Process.Top < 1 || cfg.Process.Top > MaxTopN {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("process.top %d is out of range", cfg.Process.Top),
			fmt.Sprintf("Pick a value between 1 and %d", MaxTopN))
	}

	if strings.ContainsAny(cfg.Host, " \t\n") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("host %q contains whitespace", cfg.Host),
			"Use an SSH alias, hostname, user@host or host:port")
	}

	return nil
}

func validateAlert(a AlertConfig) error {
	if a.Threshold < 0 || a.Threshold > 100 {
		return fmt.Errorf("alert.threshold %d must be a percentage between 0 and 100", a.Threshold)
	}
	if a.Pulses < 0 || a.Pulses > 10 {
		return fmt.Errorf("alert.pulses %d must be between 0 and 10", a.Pulses)
	}
	if a.Gap < 0 {
		return fmt.Errorf("alert.gap %s can't be negative", a.Gap)
	}
	return nil
}
