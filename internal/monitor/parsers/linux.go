package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/tmon/internal/monitor"
)

// ParseProcStat reads the aggregate cpu line of /proc/stat. Total is the
// sum of every field; idle is idle plus iowait. Cores counts the cpuN lines.
func ParseProcStat(procStat string) (monitor.CPUSnapshot, error) {
	var snap monitor.CPUSnapshot
	found := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			snap.Cores++
			continue
		}
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return snap, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return snap, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			snap.Ticks.Total += val
			if i == 4 || i == 5 {
				snap.Ticks.Idle += val
			}
		}
		found = true
	}
	if err := scanner.Err(); err != nil {
		return snap, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return snap, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return snap, nil
}

// ParseLoadAvg reads the three load averages from /proc/loadavg.
func ParseLoadAvg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(procLoadavg)
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", strings.TrimSpace(procLoadavg))
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// ParseMeminfo reads /proc/meminfo, converting kB values to bytes.
// MemAvailable is estimated as free + buffers + cached on kernels without it.
func ParseMeminfo(procMeminfo string) (monitor.MemInfo, error) {
	var info monitor.MemInfo
	hasTotal, hasAvailable := false, false

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		val *= 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			info.Total = val
			hasTotal = true
		case "MemFree":
			info.Free = val
		case "MemAvailable":
			info.Available = val
			hasAvailable = true
		case "Buffers":
			info.Buffers = val
		case "Cached":
			info.Cached = val
		case "SwapTotal":
			info.SwapTotal = val
		case "SwapFree":
			info.SwapFree = val
		}
	}
	if err := scanner.Err(); err != nil {
		return info, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if !hasTotal {
		return info, fmt.Errorf("MemTotal missing from /proc/meminfo")
	}
	if !hasAvailable {
		info.Available = info.Free + info.Buffers + info.Cached
	}
	return info, nil
}

// ParseNetDev reads cumulative byte counters per interface from /proc/net/dev.
func ParseNetDev(procNetDev string) ([]monitor.NetCounters, error) {
	var out []monitor.NetCounters

	scanner := bufio.NewScanner(strings.NewReader(procNetDev))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue // headers
		}

		// "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		fields := strings.Fields(rest)
		if len(fields) < 16 {
			continue
		}

		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rx bytes for %s: %w", name, err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tx bytes for %s: %w", name, err)
		}
		out = append(out, monitor.NetCounters{Name: name, RxBytes: rx, TxBytes: tx})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	return out, nil
}

// ParseProcIO reads read_bytes and write_bytes from /proc/<pid>/io.
func ParseProcIO(content string) (monitor.ProcIO, error) {
	var io monitor.ProcIO
	seen := 0

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		var dst *uint64
		switch strings.TrimSpace(key) {
		case "read_bytes":
			dst = &io.ReadBytes
		case "write_bytes":
			dst = &io.WriteBytes
		default:
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return io, fmt.Errorf("failed to parse %s: %w", strings.TrimSpace(key), err)
		}
		*dst = v
		seen++
	}
	if seen < 2 {
		return io, fmt.Errorf("read_bytes/write_bytes missing from io file")
	}
	return io, nil
}
