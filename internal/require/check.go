package require

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/tmon/internal/collect"
	"github.com/rileyhilliard/tmon/internal/errors"
)

// CheckOne probes a single capability on h. focus is the panel the user
// asked for, or "" for the menu.
func CheckOne(ctx context.Context, h collect.Host, c Capability, focus string) CheckResult {
	result := CheckResult{
		Capability: c,
		Required:   c.Core || (focus != "" && c.Panel == focus),
	}

	switch c.Kind {
	case KindFile:
		_, err := h.ReadFile(ctx, c.Name)
		result.Satisfied = err == nil
	case KindTool:
		result.Satisfied = ValidateToolName(c.Name) && h.HasTool(ctx, c.Name)
	}

	if !result.Satisfied && c.LocalOK && h.IsLocal() {
		result.Fallback = true
	}
	return result
}

// CheckAll probes every capability in parallel. Results keep the order of caps.
func CheckAll(ctx context.Context, h collect.Host, caps []Capability, focus string) []CheckResult {
	results := make([]CheckResult, len(caps))

	var wg sync.WaitGroup
	for i, c := range caps {
		wg.Add(1)
		go func(i int, c Capability) {
			defer wg.Done()
			results[i] = CheckOne(ctx, h, c, focus)
		}(i, c)
	}
	wg.Wait()

	return results
}

// CheckPlatform fails unless h runs Linux.
func CheckPlatform(ctx context.Context, h collect.Host) error {
	p, err := h.Platform(ctx)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDeps,
			fmt.Sprintf("Couldn't detect the operating system of %s", h.Name()),
			"Check that the host accepts commands over SSH")
	}
	if p != collect.PlatformLinux {
		return errors.New(errors.ErrDeps,
			fmt.Sprintf("%s runs %s; tmon reads Linux /proc counters", h.Name(), p),
			"Point --host at a Linux machine")
	}
	return nil
}

// Verify runs the startup check for the given focus panel ("" for the
// menu). It returns every result, plus a DEPS error listing all blocking
// capabilities when any is missing.
func Verify(ctx context.Context, h collect.Host, focus string) ([]CheckResult, error) {
	if err := CheckPlatform(ctx, h); err != nil {
		return nil, err
	}

	var caps []Capability
	if focus == "" {
		caps = For()
	} else {
		caps = For(focus)
		for _, c := range Catalog {
			if c.Core && c.Panel != focus {
				caps = append(caps, c)
			}
		}
	}

	results := CheckAll(ctx, h, caps, focus)
	if missing := FilterMissing(results); len(missing) > 0 {
		return results, MissingError(h.Name(), missing)
	}
	return results, nil
}

// MissingError builds the DEPS error enumerating missing capabilities.
func MissingError(host string, missing []CheckResult) error {
	var hints []string
	seen := make(map[string]bool)
	for _, m := range missing {
		if m.Hint != "" && !seen[m.Hint] {
			seen[m.Hint] = true
			hints = append(hints, m.Hint)
		}
	}
	return errors.New(errors.ErrDeps,
		fmt.Sprintf("%s is missing %s", host, FormatMissing(missing)),
		strings.Join(hints, "\n  "))
}

// FormatMissing creates a human-readable list of missing capabilities.
func FormatMissing(missing []CheckResult) string {
	if len(missing) == 0 {
		return ""
	}

	parts := make([]string, 0, len(missing))
	for _, m := range missing {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, m.Panel))
	}
	return strings.Join(parts, ", ")
}
