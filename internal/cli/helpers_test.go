package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/tmon/internal/collect"
)

// fakeHost serves canned files and tools.
type fakeHost struct {
	name     string
	local    bool
	platform collect.Platform
	files    map[string]string
	tools    map[string]bool
}

func linuxBox() *fakeHost {
	return &fakeHost{
		name:     "box",
		platform: collect.PlatformLinux,
		files: map[string]string{
			collect.ProcStat:    "cpu  1 2 3 4 5 6 7 8\n",
			collect.ProcMeminfo: "MemTotal: 1024 kB\n",
			collect.ProcNetDev:  "",
		},
		tools: map[string]bool{
			collect.ToolIostat:    true,
			collect.ToolPS:        true,
			collect.ToolNvidiaSMI: true,
		},
	}
}

func (f *fakeHost) Name() string  { return f.name }
func (f *fakeHost) IsLocal() bool { return f.local }
func (f *fakeHost) Close() error  { return nil }

func (f *fakeHost) ReadFile(_ context.Context, path string) (string, error) {
	if s, ok := f.files[path]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%s: no such file", path)
}

func (f *fakeHost) Run(_ context.Context, name string, _ ...string) (string, error) {
	return "", fmt.Errorf("%s: not scripted", name)
}

func (f *fakeHost) HasTool(_ context.Context, name string) bool { return f.tools[name] }

func (f *fakeHost) Platform(context.Context) (collect.Platform, error) {
	return f.platform, nil
}

var _ collect.Host = (*fakeHost)(nil)
