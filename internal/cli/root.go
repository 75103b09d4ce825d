package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tmon",
	Short: "Real-time terminal dashboard for Linux host metrics",
	Long: `tmon samples CPU, memory, network, disk, process and GPU metrics and
draws them as live graphs in the terminal.

Run it without arguments to pick a monitor from the menu, or name one to
start straight into it. Inside a monitor any key returns to the menu.

Examples:
  tmon
  tmon cpu --interval 500ms
  tmon net --host user@buildbox
  tmon proc --top 20 --metrics-addr :9105`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, "")
	},
}

func init() {
	AddGlobalFlags(rootCmd.PersistentFlags(), &globalFlags)
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
