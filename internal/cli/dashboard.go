package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/tmon/internal/collect"
	"github.com/rileyhilliard/tmon/internal/config"
	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/exporter"
	"github.com/rileyhilliard/tmon/internal/logger"
	"github.com/rileyhilliard/tmon/internal/monitor"
	"github.com/rileyhilliard/tmon/internal/require"
)

// connectTimeout bounds the SSH handshake for --host.
const connectTimeout = 10 * time.Second

// focusModel starts the program with one monitor already open.
type focusModel struct {
	monitor.Model
	start tea.Cmd
}

func (f focusModel) Init() tea.Cmd { return f.start }

// dashboardCommand runs the interactive dashboard. focus is the monitor to
// open at startup, or "" for the menu.
func dashboardCommand(cmd *cobra.Command, focus string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"tmon needs an interactive terminal",
			"Run it directly in a terminal, not through a pipe or redirect")
	}

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	log, logCloser, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := openHost(cfg.Host)
	if err != nil {
		return err
	}
	defer h.Close()
	log.Info("monitoring %s every %s", h.Name(), cfg.Interval)

	results, err := require.Verify(ctx, h, focus)
	if err != nil {
		log.Error("capability check: %v", err)
		return err
	}
	for _, d := range require.FilterDegraded(results) {
		log.Warn("%s unavailable on %s, the %s monitor will show N/A", d.Name, h.Name(), d.Panel)
	}

	var exp *exporter.Exporter
	if cfg.MetricsAddr != "" {
		exp = exporter.New(h.Name())
		if _, err := exp.Start(ctx, cfg.MetricsAddr, log); err != nil {
			return err
		}
		defer exp.Shutdown(context.Background())
	}

	model := monitor.NewModel(ctx, menuItems(h, panelOptions(cfg), exp), cfg.Interval, log)
	var start tea.Cmd
	if focus != "" {
		model, start = model.Open(menuKey(focus))
	}

	p := tea.NewProgram(focusModel{Model: model, start: start}, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return exitError(err, log)
}

// panelOptions maps config onto the options every panel shares.
func panelOptions(cfg *config.Config) monitor.PanelOptions {
	return monitor.PanelOptions{
		Height:          cfg.Graph.Height,
		Width:           cfg.Graph.Width,
		Alert:           monitor.NewAlertGate(cfg.Alert.Threshold, cfg.Alert.Pulses, cfg.Alert.Gap, cfg.Alert.Enabled),
		TopN:            cfg.Process.Top,
		IncludeLoopback: cfg.Network.IncludeLoopback,
	}
}

// exitError turns interrupts and signal-driven shutdowns into a clean exit.
func exitError(err error, log logger.Logger) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, tea.ErrProgramKilled) || stderrors.Is(err, tea.ErrInterrupted) || stderrors.Is(err, context.Canceled) {
		log.Info("stopped: %v", err)
		return nil
	}
	return errors.WrapWithCode(err, errors.ErrExec,
		"The dashboard stopped unexpectedly",
		"Check the log file for details, or rerun with --debug")
}

// openLog opens the rotating log file named in cfg.
func openLog(cfg *config.Config) (logger.Logger, io.Closer, error) {
	log, closer, err := logger.NewFileLogger(logger.FileOptions{
		Path:  cfg.Log.File,
		Debug: cfg.Log.Debug,
	})
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open the log file",
			"Set log.file in your config to a writable path")
	}
	return log, closer, nil
}

// openHost returns the local host, or an SSH connection when target is set.
func openHost(target string) (collect.Host, error) {
	if target == "" {
		return collect.Local{}, nil
	}
	r := collect.NewRemote(target, connectTimeout, nil)
	if err := r.Connect(); err != nil {
		return nil, err
	}
	return r, nil
}
