// Package cli implements the tmon command-line interface.
//
// # Command Structure
//
// The root command is "tmon", which opens the monitor menu. Each monitor
// also has its own subcommand that starts straight into that view:
//
//	tmon                - Menu of monitors
//	tmon cpu            - CPU usage graph
//	tmon mem            - Memory usage graph
//	tmon net            - Network receive/transmit rates
//	tmon disk           - Disk read/write rates
//	tmon proc           - Top processes by CPU with I/O rates
//	tmon gpu            - NVIDIA GPU utilization
//	tmon init           - Create a config file
//	tmon doctor         - Check what the target host can report
//
// # Startup
//
// Every dashboard command follows the same phases:
//
//  1. Load config, then apply command-line overrides
//  2. Open the log file (the terminal belongs to the dashboard)
//  3. Connect to the host (local, or one SSH connection with --host)
//  4. Verify the host's capabilities; missing required ones stop startup
//  5. Optionally start the Prometheus endpoint
//  6. Run the Bubble Tea program until quit or interrupt
//
// # Flag Handling
//
// Global flags are defined on the root command and shared by every
// subcommand. A flag only overrides the config value when it was set
// explicitly on the command line.
package cli
