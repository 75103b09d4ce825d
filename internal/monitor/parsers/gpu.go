package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/tmon/internal/monitor"
)

// NvidiaSMIFields is the --query-gpu list ParseNvidiaSMI expects, in order.
const NvidiaSMIFields = "index,name,utilization.gpu,memory.used,memory.total,power.draw,temperature.gpu,fan.speed,pstate,clocks.gr,clocks.mem"

// NvidiaSMIArgs are the arguments for a single telemetry sample.
var NvidiaSMIArgs = []string{"--query-gpu=" + NvidiaSMIFields, "--format=csv,noheader,nounits"}

// nvidiaNumericTail is the number of fields after the name.
const nvidiaNumericTail = 9

// ParseNvidiaSMI parses one CSV line per GPU. Fields the driver reports as
// not available become nil rather than failing the whole line.
//
// Returns nil, nil if no GPU is present (empty output or an error banner).
func ParseNvidiaSMI(output string) ([]monitor.GPUStats, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	// Data lines start with the GPU index; anything else is a driver banner.
	if output[0] < '0' || output[0] > '9' {
		lower := strings.ToLower(output)
		if strings.Contains(lower, "no devices") ||
			strings.Contains(lower, "not found") ||
			strings.Contains(lower, "failed") ||
			strings.Contains(lower, "error") {
			return nil, nil
		}
	}

	var gpus []monitor.GPUStats
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		g, err := parseNvidiaLine(line)
		if err != nil {
			return nil, err
		}
		gpus = append(gpus, g)
	}
	return gpus, nil
}

func parseNvidiaLine(line string) (monitor.GPUStats, error) {
	var g monitor.GPUStats

	fields := strings.Split(line, ",")
	if len(fields) < 2+nvidiaNumericTail {
		return g, fmt.Errorf("nvidia-smi output has insufficient fields: expected %d, got %d", 2+nvidiaNumericTail, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return g, fmt.Errorf("failed to parse GPU index '%s': %w", fields[0], err)
	}
	g.Index = idx

	// Names may contain commas; everything between the index and the
	// numeric tail belongs to the name.
	tail := fields[len(fields)-nvidiaNumericTail:]
	g.Name = strings.Join(fields[1:len(fields)-nvidiaNumericTail], ", ")

	targets := []struct {
		name string
		dst  **float64
	}{
		{"utilization", &g.Utilization},
		{"memory used", &g.MemUsedMiB},
		{"memory total", &g.MemTotalMiB},
		{"power", &g.PowerWatts},
		{"temperature", &g.TempCelsius},
		{"fan speed", &g.FanPercent},
	}
	for i, t := range targets {
		v, err := optionalFloat(tail[i])
		if err != nil {
			return g, fmt.Errorf("failed to parse GPU %s '%s': %w", t.name, tail[i], err)
		}
		*t.dst = v
	}

	if !notAvailable(tail[6]) {
		g.PState = tail[6]
	}
	if g.ClockCoreMHz, err = optionalFloat(tail[7]); err != nil {
		return g, fmt.Errorf("failed to parse GPU core clock '%s': %w", tail[7], err)
	}
	if g.ClockMemMHz, err = optionalFloat(tail[8]); err != nil {
		return g, fmt.Errorf("failed to parse GPU memory clock '%s': %w", tail[8], err)
	}
	return g, nil
}

// notAvailable matches the placeholders nvidia-smi prints for missing values.
func notAvailable(s string) bool {
	switch s {
	case "", "N/A", "[N/A]", "[Not Supported]", "[Unknown Error]":
		return true
	}
	return false
}

func optionalFloat(s string) (*float64, error) {
	if notAvailable(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
