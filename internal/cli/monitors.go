package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/tmon/internal/collect"
	"github.com/rileyhilliard/tmon/internal/exporter"
	"github.com/rileyhilliard/tmon/internal/monitor"
	"github.com/rileyhilliard/tmon/internal/require"
)

// monitorDef ties a subcommand to its menu entry and panel constructor.
type monitorDef struct {
	name  string // subcommand and capability panel key
	key   string // menu key
	title string
	short string
	build func(h collect.Host, opts monitor.PanelOptions) monitor.Panel
}

var monitors = []monitorDef{
	{
		name: require.PanelCPU, key: "1", title: "CPU",
		short: "Graph CPU usage",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewCPUPanel(collect.CPU(h), opts)
		},
	},
	{
		name: require.PanelMemory, key: "2", title: "Memory",
		short: "Graph memory and swap usage",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewMemoryPanel(collect.Memory(h), opts)
		},
	},
	{
		name: require.PanelNetwork, key: "3", title: "Network",
		short: "Graph network receive and transmit rates",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewNetworkPanel(collect.Network(h), opts)
		},
	},
	{
		name: require.PanelDisk, key: "4", title: "Disk",
		short: "Graph disk read and write rates",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewDiskPanel(collect.Disk(h), opts)
		},
	},
	{
		name: require.PanelProcess, key: "5", title: "Processes",
		short: "List the busiest processes with their I/O rates",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewProcessPanel(collect.Processes(h, opts.TopN), opts)
		},
	},
	{
		name: require.PanelGPU, key: "6", title: "GPU",
		short: "Graph NVIDIA GPU utilization",
		build: func(h collect.Host, opts monitor.PanelOptions) monitor.Panel {
			return monitor.NewGPUPanel(collect.GPU(h), opts)
		},
	},
}

// menuKey returns the menu key for a subcommand name, or "" if unknown.
func menuKey(name string) string {
	for _, def := range monitors {
		if def.name == name {
			return def.key
		}
	}
	return ""
}

// menuItems builds the dashboard menu. Every New call creates new sources,
// so a reopened monitor starts with no history and no rate baselines.
// exp may be nil.
func menuItems(h collect.Host, opts monitor.PanelOptions, exp *exporter.Exporter) []monitor.MenuItem {
	if exp != nil {
		opts.Recorder = exp
	}

	items := make([]monitor.MenuItem, 0, len(monitors))
	for _, def := range monitors {
		items = append(items, monitor.MenuItem{
			Key:   def.key,
			Title: def.title,
			New: func() monitor.Panel {
				// Only the open monitor's series are exported.
				if exp != nil {
					exp.Reset()
				}
				return def.build(h, opts)
			},
		})
	}
	return items
}

func newMonitorCmd(def monitorDef) *cobra.Command {
	return &cobra.Command{
		Use:   def.name,
		Short: def.short,
		Long: def.short + `.

Starts the dashboard straight into this monitor. Press any key to go
back to the menu, or Ctrl+C to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dashboardCommand(cmd, def.name)
		},
	}
}

func init() {
	for _, def := range monitors {
		rootCmd.AddCommand(newMonitorCmd(def))
	}
}
