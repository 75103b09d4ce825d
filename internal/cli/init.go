package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/tmon/internal/config"
	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/require"
	"github.com/rileyhilliard/tmon/internal/ui"
	"github.com/rileyhilliard/tmon/pkg/sshutil"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Global    bool // write ~/.config/tmon/config.yaml instead of ./.tmon.yaml
	Overwrite bool // overwrite an existing file without asking
}

// initAnswers are the raw form values.
type initAnswers struct {
	Host      string
	Interval  string
	Threshold string
	Alert     bool
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a tmon config file",
	Long: `Create a tmon config file interactively.

Asks which host to watch (this machine or an alias from ~/.ssh/config),
how often to sample, and when to sound the alert. A remote host is tested
before the file is written.

Examples:
  tmon init
  tmon init --global
  tmon init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.Context(), initOpts)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initOpts.Global, "global", false, "write the user config instead of ./"+config.ConfigFileName)
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite an existing config without asking")
	rootCmd.AddCommand(initCmd)
}

// Init runs the config form and writes the result.
func Init(ctx context.Context, opts InitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := filepath.Join(".", config.ConfigFileName)
	if opts.Global {
		path = config.GlobalConfigPath()
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Couldn't find your home directory",
				"Set $HOME, or run 'tmon init' without --global")
		}
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	answers := initAnswers{
		Interval:  config.DefaultInterval.String(),
		Threshold: strconv.Itoa(config.DefaultThreshold),
		Alert:     true,
	}
	if err := initForm(&answers).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility, or write "+config.ConfigFileName+" by hand")
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}

	if cfg.Host != "" {
		fmt.Println()
		if err := testHost(ctx, cfg.Host); err != nil {
			fmt.Printf("\n%s %v\n", ui.SymbolWarn, err)
			saveAnyway := false
			confirm := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Save config anyway? (You can fix the host later)").
					Value(&saveAnyway),
			))
			if formErr := confirm.Run(); formErr != nil || !saveAnyway {
				return err
			}
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("\n%s Created %s\n", ui.SymbolSuccess, path)
	fmt.Println("\nNext: run 'tmon' to open the dashboard, or 'tmon doctor' to check the host")
	return nil
}

func initForm(a *initAnswers) *huh.Form {
	hostOptions := []huh.Option[string]{huh.NewOption("This machine", "")}
	if entries, err := sshutil.ConfiguredHosts(); err == nil {
		for _, e := range entries {
			hostOptions = append(hostOptions, huh.NewOption(fmt.Sprintf("%s (%s)", e.Alias, e.Description()), e.Alias))
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which host should tmon watch?").
				Description("Remote hosts come from ~/.ssh/config and must run Linux").
				Options(hostOptions...).
				Value(&a.Host),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sample interval").
				Description(fmt.Sprintf("How often to sample (minimum %s)", config.MinInterval)).
				Placeholder(config.DefaultInterval.String()).
				Value(&a.Interval).
				Validate(func(s string) error {
					_, err := parseInterval(s)
					return err
				}),
			huh.NewInput().
				Title("Alert threshold (%)").
				Description("CPU, memory or GPU usage above this sounds the alert").
				Placeholder(strconv.Itoa(config.DefaultThreshold)).
				Value(&a.Threshold).
				Validate(func(s string) error {
					_, err := parseThreshold(s)
					return err
				}),
			huh.NewConfirm().
				Title("Sound the alert?").
				Value(&a.Alert),
		),
	)
}

// buildInitConfig turns form answers into a validated config.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	interval, err := parseInterval(a.Interval)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Try something like 1s or 500ms")
	}
	threshold, err := parseThreshold(a.Threshold)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use a whole number between 0 and 100")
	}

	cfg := config.DefaultConfig()
	cfg.Host = strings.TrimSpace(a.Host)
	cfg.Interval = interval
	cfg.Alert.Threshold = threshold
	cfg.Alert.Enabled = a.Alert
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return config.DefaultInterval, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("'%s' doesn't look like a duration", s)
	}
	if d < config.MinInterval {
		return 0, fmt.Errorf("interval must be at least %s", config.MinInterval)
	}
	return d, nil
}

func parseThreshold(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return config.DefaultThreshold, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("threshold must be a whole number between 0 and 100")
	}
	return n, nil
}

// testHost connects to target and runs the startup capability check.
func testHost(ctx context.Context, target string) error {
	spinner := ui.NewSpinner(os.Stdout, "Testing connection to "+target)
	spinner.Start()

	h, err := openHost(target)
	if err != nil {
		spinner.Fail()
		return err
	}
	defer h.Close()

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	if _, err := require.Verify(ctx, h, ""); err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()
	return nil
}
