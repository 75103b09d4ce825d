// Package require checks, before any panel starts, that the monitored host
// provides the files and tools the panels read.
package require

import (
	"regexp"

	"github.com/rileyhilliard/tmon/internal/collect"
)

// validToolName matches safe tool names: alphanumeric, hyphens, underscores, and periods.
var validToolName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

// ValidateToolName checks if a tool name is safe to use in shell commands.
func ValidateToolName(name string) bool {
	return validToolName.MatchString(name)
}

// Kind says how a capability is probed.
type Kind int

const (
	KindFile Kind = iota
	KindTool
)

// Panel keys, matching the subcommand names.
const (
	PanelCPU     = "cpu"
	PanelMemory  = "mem"
	PanelNetwork = "net"
	PanelDisk    = "disk"
	PanelProcess = "proc"
	PanelGPU     = "gpu"
)

// Panels lists every panel key in menu order.
var Panels = []string{PanelCPU, PanelMemory, PanelNetwork, PanelDisk, PanelProcess, PanelGPU}

// Capability is one file or tool a panel reads.
type Capability struct {
	Name  string
	Kind  Kind
	Panel string

	// Core capabilities are needed for basic operation. The rest only
	// degrade their panel to N/A, unless that panel is the one requested.
	Core bool

	// LocalOK means a local host has a library fallback.
	LocalOK bool

	Hint string
}

// Catalog lists every capability tmon probes.
var Catalog = []Capability{
	{Name: collect.ProcStat, Kind: KindFile, Panel: PanelCPU, Core: true, Hint: "tmon needs a Linux procfs mounted at /proc"},
	{Name: collect.ProcMeminfo, Kind: KindFile, Panel: PanelMemory, Core: true, Hint: "tmon needs a Linux procfs mounted at /proc"},
	{Name: collect.ProcNetDev, Kind: KindFile, Panel: PanelNetwork, Core: true, Hint: "tmon needs a Linux procfs mounted at /proc"},
	{Name: collect.ToolIostat, Kind: KindTool, Panel: PanelDisk, LocalOK: true, Hint: "Install sysstat: sudo apt install sysstat"},
	{Name: collect.ToolPS, Kind: KindTool, Panel: PanelProcess, LocalOK: true, Hint: "Install procps: sudo apt install procps"},
	{Name: collect.ToolNvidiaSMI, Kind: KindTool, Panel: PanelGPU, Hint: "Install the NVIDIA driver utilities"},
}

// CheckResult is the outcome of probing one capability.
type CheckResult struct {
	Capability
	Satisfied bool
	// Required is whether a missing capability blocks startup.
	Required bool
	// Fallback is true when the capability is missing but the local
	// library fallback covers it.
	Fallback bool
}

// For returns the capabilities the given panels read. No panels means all.
func For(panels ...string) []Capability {
	if len(panels) == 0 {
		return append([]Capability(nil), Catalog...)
	}
	want := make(map[string]bool, len(panels))
	for _, p := range panels {
		want[p] = true
	}
	var caps []Capability
	for _, c := range Catalog {
		if want[c.Panel] {
			caps = append(caps, c)
		}
	}
	return caps
}

// FilterMissing returns the results that block startup.
func FilterMissing(results []CheckResult) []CheckResult {
	var missing []CheckResult
	for _, r := range results {
		if !r.Satisfied && !r.Fallback && r.Required {
			missing = append(missing, r)
		}
	}
	return missing
}

// FilterDegraded returns missing capabilities that only disable part of a panel.
func FilterDegraded(results []CheckResult) []CheckResult {
	var degraded []CheckResult
	for _, r := range results {
		if !r.Satisfied && !r.Fallback && !r.Required {
			degraded = append(degraded, r)
		}
	}
	return degraded
}
