package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/tmon/internal/collect"
	"github.com/rileyhilliard/tmon/internal/errors"
	tmonrequire "github.com/rileyhilliard/tmon/internal/require"
	"github.com/rileyhilliard/tmon/internal/ui"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestCapabilityRow(t *testing.T) {
	tests := []struct {
		name   string
		result tmonrequire.CheckResult
		want   ui.CheckRow
	}{
		{
			name: "satisfied core file",
			result: tmonrequire.CheckResult{
				Capability: tmonrequire.Capability{Name: "/proc/stat", Panel: "cpu", Core: true},
				Satisfied:  true,
				Required:   true,
			},
			want: ui.CheckRow{Status: ui.StatusPass, Category: "Required", Message: "/proc/stat (CPU)"},
		},
		{
			name: "missing core file",
			result: tmonrequire.CheckResult{
				Capability: tmonrequire.Capability{Name: "/proc/meminfo", Panel: "mem", Core: true, Hint: "mount procfs"},
				Required:   true,
			},
			want: ui.CheckRow{Status: ui.StatusFail, Category: "Required", Message: "/proc/meminfo (Memory) missing", Suggestion: "mount procfs"},
		},
		{
			name: "missing tool with local fallback",
			result: tmonrequire.CheckResult{
				Capability: tmonrequire.Capability{Name: "iostat", Panel: "disk", LocalOK: true},
				Fallback:   true,
			},
			want: ui.CheckRow{Status: ui.StatusInfo, Category: "Optional", Message: "iostat (Disk) not found, using built-in counters"},
		},
		{
			name: "missing optional tool",
			result: tmonrequire.CheckResult{
				Capability: tmonrequire.Capability{Name: "nvidia-smi", Panel: "gpu", Hint: "install drivers"},
			},
			want: ui.CheckRow{Status: ui.StatusWarn, Category: "Optional", Message: "nvidia-smi (GPU) missing, monitor will show N/A", Suggestion: "install drivers"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, capabilityRow(tt.result))
		})
	}
}

func TestHostRows(t *testing.T) {
	h := linuxBox()
	delete(h.tools, collect.ToolNvidiaSMI)

	rows := hostRows(context.Background(), h)
	require.Len(t, rows, 1+len(tmonrequire.Catalog))
	assert.Equal(t, ui.StatusPass, rows[0].Status)
	assert.Equal(t, "box runs linux", rows[0].Message)

	fails, warns := ui.Summarize(rows)
	assert.Equal(t, 0, fails)
	assert.Equal(t, 1, warns)
}

func TestHostRowsNotLinux(t *testing.T) {
	h := linuxBox()
	h.platform = collect.PlatformDarwin

	rows := hostRows(context.Background(), h)
	require.Len(t, rows, 1)
	assert.Equal(t, ui.StatusFail, rows[0].Status)
	assert.Equal(t, "Host", rows[0].Category)
	assert.NotEmpty(t, rows[0].Suggestion)
}

func TestErrorRow(t *testing.T) {
	structured := errors.New(errors.ErrSSH, "Can't reach box", "Check the host is up")
	row := errorRow("Host", fmt.Errorf("connect: %w", structured))
	assert.Equal(t, ui.CheckRow{Status: ui.StatusFail, Category: "Host", Message: "Can't reach box", Suggestion: "Check the host is up"}, row)

	plain := errorRow("Config", fmt.Errorf("boom"))
	assert.Equal(t, "boom", plain.Message)
	assert.Empty(t, plain.Suggestion)
}

func TestWriteDoctorText(t *testing.T) {
	tests := []struct {
		name string
		rows []ui.CheckRow
		tail string
	}{
		{
			name: "all clear",
			rows: []ui.CheckRow{{Status: ui.StatusPass, Category: "Host", Message: "ok"}},
			tail: ui.SymbolSuccess + " Everything tmon reads is available on box\n",
		},
		{
			name: "warnings",
			rows: []ui.CheckRow{{Status: ui.StatusWarn, Category: "Optional", Message: "nvidia-smi missing"}},
			tail: ui.SymbolWarn + " Ready, 1 monitor limited on box\n",
		},
		{
			name: "failures",
			rows: []ui.CheckRow{{Status: ui.StatusFail, Category: "Required", Message: "/proc/stat missing"}},
			tail: ui.SymbolFail + " 1 problem would stop the dashboard on box\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeDoctor(&buf, "box", tt.rows))
			assert.Contains(t, buf.String(), tt.rows[0].Message)
			assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte(tt.tail)), buf.String())
		})
	}
}

func TestWriteDoctorJSON(t *testing.T) {
	doctorJSON = true
	defer func() { doctorJSON = false }()

	var buf bytes.Buffer
	rows := []ui.CheckRow{
		{Status: ui.StatusPass, Category: "Host", Message: "box runs linux"},
		{Status: ui.StatusWarn, Category: "Optional", Message: "nvidia-smi missing", Suggestion: "install drivers"},
	}
	require.NoError(t, writeDoctor(&buf, "box", rows))

	var out DoctorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "box", out.Host)
	assert.Equal(t, rows, out.Checks)
	assert.Equal(t, SummaryOutput{Warn: 1}, out.Summary)
}
