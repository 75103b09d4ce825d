package parsers

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/tmon/internal/monitor"
)

// IostatArgs take two one-second device reports; the first covers time
// since boot and is discarded.
var IostatArgs = []string{"-d", "-k", "1", "2"}

// ParseIostat reads per-device KB/s from the last report in `iostat -d -k`
// output. Columns are located by header name so both the old
// "Device:" layout and newer sysstat layouts work.
func ParseIostat(output string) ([]monitor.DiskRate, error) {
	var (
		rates            []monitor.DiskRate
		readCol, wrtnCol = -1, -1
		reports          int
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if strings.HasPrefix(fields[0], "Device") {
			reports++
			rates = rates[:0]
			readCol, wrtnCol = -1, -1
			for i, f := range fields {
				switch f {
				case "kB_read/s":
					readCol = i
				case "kB_wrtn/s":
					wrtnCol = i
				}
			}
			if readCol < 0 || wrtnCol < 0 {
				return nil, fmt.Errorf("iostat header lacks kB_read/s or kB_wrtn/s: %s", scanner.Text())
			}
			continue
		}
		if readCol < 0 || len(fields) <= max(readCol, wrtnCol) {
			continue
		}

		read, err := parseDecimal(fields[readCol])
		if err != nil {
			return nil, fmt.Errorf("failed to parse kB_read/s for %s: %w", fields[0], err)
		}
		wrtn, err := parseDecimal(fields[wrtnCol])
		if err != nil {
			return nil, fmt.Errorf("failed to parse kB_wrtn/s for %s: %w", fields[0], err)
		}
		rates = append(rates, monitor.DiskRate{Device: fields[0], ReadKBps: read, WriteKBps: wrtn})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning iostat output: %w", err)
	}
	if reports == 0 {
		return nil, fmt.Errorf("no device report in iostat output")
	}
	return rates, nil
}

// parseDecimal accepts a comma decimal separator, which iostat prints
// under some locales.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// PSArgs list every process sorted by CPU share.
var PSArgs = []string{"-eo", "pid,pcpu,pmem,comm", "--sort=-pcpu"}

// ParsePS reads `ps -eo pid,pcpu,pmem,comm` output. Lines that don't parse
// are skipped.
func ParsePS(output string) ([]monitor.ProcessInfo, error) {
	var procs []monitor.ProcessInfo
	header := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "PID" {
			header = true
			continue
		}
		if len(fields) < 4 {
			continue
		}
		pid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			continue
		}
		cpu, err := parseDecimal(fields[1])
		if err != nil {
			continue
		}
		mem, err := parseDecimal(fields[2])
		if err != nil {
			continue
		}
		procs = append(procs, monitor.ProcessInfo{
			PID:        int32(pid),
			Name:       strings.Join(fields[3:], " "),
			CPUPercent: cpu,
			MemPercent: mem,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning ps output: %w", err)
	}
	if !header {
		return nil, fmt.Errorf("unexpected ps output: no header line")
	}
	return procs, nil
}

// ParseProcIOBatch reads `grep -H _bytes /proc/<pid>/io ...` output, which
// prefixes each line with its file path. PIDs missing either counter are
// left out.
func ParseProcIOBatch(output string) map[int32]monitor.ProcIO {
	type partial struct {
		io   monitor.ProcIO
		seen int
	}
	byPID := make(map[int32]*partial)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		path, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		pidText, ok := strings.CutPrefix(path, "/proc/")
		if !ok {
			continue
		}
		pidText, ok = strings.CutSuffix(pidText, "/io")
		if !ok {
			continue
		}
		pid, err := strconv.ParseInt(pidText, 10, 32)
		if err != nil {
			continue
		}
		key, value, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		p := byPID[int32(pid)]
		if p == nil {
			p = &partial{}
			byPID[int32(pid)] = p
		}
		switch strings.TrimSpace(key) {
		case "read_bytes":
			p.io.ReadBytes = v
			p.seen++
		case "write_bytes":
			p.io.WriteBytes = v
			p.seen++
		}
	}

	out := make(map[int32]monitor.ProcIO, len(byPID))
	for pid, p := range byPID {
		if p.seen >= 2 {
			out[pid] = p.io
		}
	}
	return out
}
