package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/tmon/internal/collect"
	"github.com/rileyhilliard/tmon/internal/config"
	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/require"
	"github.com/rileyhilliard/tmon/internal/ui"
	"github.com/rileyhilliard/tmon/internal/util"
)

const doctorTimeout = 30 * time.Second

var doctorJSON bool

// DoctorOutput is the JSON shape of tmon doctor.
type DoctorOutput struct {
	Host    string        `json:"host"`
	Checks  []ui.CheckRow `json:"checks"`
	Summary SummaryOutput `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Fail     int  `json:"fail"`
	Warn     int  `json:"warn"`
	AllClear bool `json:"all_clear"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check what the target host can report",
	Long: `Check the config and probe the target host for every file and tool the
monitors read. Missing required capabilities would stop the dashboard from
starting; missing optional ones only turn their monitor to N/A.

doctor always exits 0 so it can run in scripts.

Examples:
  tmon doctor
  tmon doctor --host user@buildbox
  tmon doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	hostName := "localhost"

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return writeDoctor(out, hostName, []ui.CheckRow{errorRow("Config", err)})
	}
	rows := []ui.CheckRow{configRow(cfg)}
	if cfg.Host != "" {
		hostName = cfg.Host
	}

	var spinner *ui.Spinner
	if !doctorJSON && cfg.Host != "" {
		spinner = ui.NewSpinner(out, "Connecting to "+cfg.Host)
		spinner.Start()
	}
	h, err := openHost(cfg.Host)
	if err != nil {
		if spinner != nil {
			spinner.Fail()
		}
		rows = append(rows, errorRow("Host", err))
		return writeDoctor(out, hostName, rows)
	}
	defer h.Close()
	if spinner != nil {
		spinner.Success()
		fmt.Fprintln(out)
	}

	rows = append(rows, hostRows(ctx, h)...)
	return writeDoctor(out, hostName, rows)
}

func configRow(cfg *config.Config) ui.CheckRow {
	src, err := config.Find(globalFlags.Config)
	msg := "No config file, using defaults"
	if err == nil && src != "" {
		msg = "Loaded " + src
	}
	return ui.CheckRow{
		Status:   ui.StatusPass,
		Category: "Config",
		Message:  fmt.Sprintf("%s (interval %s)", msg, cfg.Interval),
	}
}

// errorRow renders a failure, keeping the suggestion of a structured error.
func errorRow(category string, err error) ui.CheckRow {
	row := ui.CheckRow{Status: ui.StatusFail, Category: category, Message: err.Error()}
	var e *errors.Error
	if stderrors.As(err, &e) {
		row.Message = e.Message
		row.Suggestion = e.Suggestion
	}
	return row
}

// hostRows probes h for its platform and every capability in the catalog.
func hostRows(ctx context.Context, h collect.Host) []ui.CheckRow {
	if err := require.CheckPlatform(ctx, h); err != nil {
		return []ui.CheckRow{errorRow("Host", err)}
	}
	rows := []ui.CheckRow{{
		Status:   ui.StatusPass,
		Category: "Host",
		Message:  fmt.Sprintf("%s runs %s", h.Name(), collect.PlatformLinux),
	}}

	for _, r := range require.CheckAll(ctx, h, require.Catalog, "") {
		rows = append(rows, capabilityRow(r))
	}
	return rows
}

func capabilityRow(r require.CheckResult) ui.CheckRow {
	category := "Optional"
	if r.Core {
		category = "Required"
	}
	label := fmt.Sprintf("%s (%s)", r.Name, monitorTitle(r.Panel))

	switch {
	case r.Satisfied:
		return ui.CheckRow{Status: ui.StatusPass, Category: category, Message: label}
	case r.Fallback:
		return ui.CheckRow{
			Status:   ui.StatusInfo,
			Category: category,
			Message:  label + " not found, using built-in counters",
		}
	case r.Core:
		return ui.CheckRow{Status: ui.StatusFail, Category: category, Message: label + " missing", Suggestion: r.Hint}
	default:
		return ui.CheckRow{Status: ui.StatusWarn, Category: category, Message: label + " missing, monitor will show N/A", Suggestion: r.Hint}
	}
}

func monitorTitle(name string) string {
	for _, def := range monitors {
		if def.name == name {
			return def.title
		}
	}
	return name
}

func writeDoctor(w io.Writer, host string, rows []ui.CheckRow) error {
	fails, warns := ui.Summarize(rows)

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(DoctorOutput{
			Host:    host,
			Checks:  rows,
			Summary: SummaryOutput{Fail: fails, Warn: warns, AllClear: fails == 0 && warns == 0},
		})
	}

	fmt.Fprint(w, ui.RenderReport(rows))
	switch {
	case fails > 0:
		fmt.Fprintf(w, "%s %s would stop the dashboard on %s\n", ui.SymbolFail, util.CountNoun(fails, "problem", "problems"), host)
	case warns > 0:
		fmt.Fprintf(w, "%s Ready, %s limited on %s\n", ui.SymbolWarn, util.CountNoun(warns, "monitor", "monitors"), host)
	default:
		fmt.Fprintf(w, "%s Everything tmon reads is available on %s\n", ui.SymbolSuccess, host)
	}
	return nil
}
