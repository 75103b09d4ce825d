package collect

import (
	"context"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/tmon/pkg/sshutil/testing"
)

const (
	procStat = `cpu  100 0 100 700 100 0 0 0 0 0
cpu0 50 0 50 350 50 0 0 0 0 0
cpu1 50 0 50 350 50 0 0 0 0 0
`
	procMeminfo = `MemTotal:       1000 kB
MemFree:         200 kB
MemAvailable:    500 kB
Buffers:         100 kB
Cached:          200 kB
SwapTotal:       100 kB
SwapFree:         50 kB
`
	procNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 100 1 0 0 0 0 0 0 100 1 0 0 0 0 0 0
  eth0: 2048 10 0 0 0 0 0 0 1024 5 0 0 0 0 0 0
`
)

// remoteWith returns a Remote backed by mock, counting dials.
func remoteWith(mock *sshtesting.MockClient, dials *int) *Remote {
	return NewRemote(mock.GetHost(), time.Second, func(string, time.Duration) (sshutil.SSHClient, error) {
		*dials++
		return mock, nil
	})
}

func linuxBox() *sshtesting.MockClient {
	return sshtesting.NewMockClient("box").WithFiles(map[string]string{
		ProcStat:      procStat,
		ProcLoadavg:   "0.50 0.25 0.10 1/100 999\n",
		ProcMeminfo:   procMeminfo,
		ProcNetDev:    procNetDev,
		"/proc/42/io": "read_bytes: 10\nwrite_bytes: 20\n",
	})
}

func TestRemoteProcSources(t *testing.T) {
	var dials int
	h := remoteWith(linuxBox(), &dials)
	ctx := context.Background()

	snap, err := CPU(h).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), snap.Ticks.Total)
	assert.Equal(t, uint64(800), snap.Ticks.Idle)
	assert.Equal(t, 2, snap.Cores)
	assert.Equal(t, [3]float64{0.5, 0.25, 0.1}, snap.LoadAvg)

	mem, err := Memory(h).Collect(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, mem.UsedPercent(), 0.001)
	assert.InDelta(t, 50.0, mem.SwapPercent(), 0.001)

	ifaces, err := Network(h).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, ifaces, 2)
	assert.Equal(t, "eth0", ifaces[1].Name)
	assert.Equal(t, uint64(2048), ifaces[1].RxBytes)

	assert.Equal(t, 1, dials, "one connection serves every read")
}

func TestMissingFileIsUnavailable(t *testing.T) {
	var dials int
	h := remoteWith(sshtesting.NewMockClient("bare"), &dials)

	_, err := Memory(h).Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Unavailable(err))
}

func TestCPUWithoutLoadavg(t *testing.T) {
	var dials int
	mock := sshtesting.NewMockClient("box").WithFiles(map[string]string{ProcStat: procStat})
	snap, err := CPU(remoteWith(mock, &dials)).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [3]float64{}, snap.LoadAvg)
}

func TestRemoteReconnectsAfterDrop(t *testing.T) {
	first := linuxBox()
	second := linuxBox()
	dials := 0
	h := NewRemote("box", time.Second, func(string, time.Duration) (sshutil.SSHClient, error) {
		dials++
		if dials == 1 {
			return first, nil
		}
		return second, nil
	})
	ctx := context.Background()

	_, err := h.ReadFile(ctx, ProcStat)
	require.NoError(t, err)

	require.NoError(t, first.Close())

	_, err = h.ReadFile(ctx, ProcStat)
	require.NoError(t, err)
	assert.Equal(t, 2, dials)
	assert.Len(t, second.Commands(), 1)

	require.NoError(t, h.Close())
	assert.False(t, second.Alive())
}

func TestRemoteDialFailure(t *testing.T) {
	h := NewRemote("nowhere", time.Second, func(string, time.Duration) (sshutil.SSHClient, error) {
		return nil, errors.New(errors.ErrSSH, "can't reach nowhere", "")
	})

	_, err := h.ReadFile(context.Background(), ProcStat)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCollect))
	assert.Error(t, h.Connect())
}

func TestRemoteRunNonZeroExit(t *testing.T) {
	mock := sshtesting.NewMockClient("box")
	mock.SetCommandResponse("^false", sshtesting.CommandResponse{Stdout: []byte("partial"), Stderr: []byte("boom\nmore"), ExitCode: 1})
	var dials int
	h := remoteWith(mock, &dials)

	out, err := h.Run(context.Background(), "false")
	require.Error(t, err)
	assert.Equal(t, "partial", out)
	assert.Contains(t, err.Error(), "boom")
	assert.NotContains(t, err.Error(), "more")
}

func TestRemoteHasTool(t *testing.T) {
	var dials int
	h := remoteWith(sshtesting.NewMockClient("box").WithTools("iostat"), &dials)
	ctx := context.Background()

	assert.True(t, h.HasTool(ctx, "iostat"))
	assert.False(t, h.HasTool(ctx, "nvidia-smi"))
}

func TestRemotePlatformCached(t *testing.T) {
	mock := sshtesting.NewMockClient("box")
	var dials int
	h := remoteWith(mock, &dials)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := h.Platform(ctx)
		require.NoError(t, err)
		assert.Equal(t, PlatformLinux, p)
	}
	assert.Equal(t, []string{PlatformDetectCommand}, mock.Commands())
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"Linux", PlatformLinux},
		{"linux\n", PlatformLinux},
		{"Darwin", PlatformDarwin},
		{"FreeBSD", PlatformUnknown},
		{"", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlatform(tt.in))
		})
	}
}

func TestGPUSource(t *testing.T) {
	ctx := context.Background()

	t.Run("tool missing", func(t *testing.T) {
		var dials int
		_, err := GPU(remoteWith(sshtesting.NewMockClient("box"), &dials)).Collect(ctx)
		require.Error(t, err)
		assert.True(t, errors.Unavailable(err))
	})

	t.Run("one GPU", func(t *testing.T) {
		mock := sshtesting.NewMockClient("box")
		mock.SetCommandResponse("^nvidia-smi ", sshtesting.CommandResponse{
			Stdout: []byte("0, NVIDIA L4, 37, 1000, 23034, 30.12, 44, [N/A], P0, 2040, 6250\n"),
		})
		var dials int
		gpus, err := GPU(remoteWith(mock, &dials)).Collect(ctx)
		require.NoError(t, err)
		require.Len(t, gpus, 1)
		assert.Equal(t, "NVIDIA L4", gpus[0].Name)
		assert.Nil(t, gpus[0].FanPercent)
	})

	t.Run("no GPUs", func(t *testing.T) {
		mock := sshtesting.NewMockClient("box")
		mock.SetCommandResponse("^nvidia-smi ", sshtesting.CommandResponse{Stdout: []byte("No devices were found\n")})
		var dials int
		_, err := GPU(remoteWith(mock, &dials)).Collect(ctx)
		assert.True(t, errors.Unavailable(err))
	})
}

const iostatOut = `Linux 6.1.0 (box)  10/19/2026  _x86_64_  (8 CPU)

Device             tps    kB_read/s    kB_wrtn/s    kB_dscd/s    kB_read    kB_wrtn    kB_dscd
sda               1.00       100.00        50.00         0.00       1000        500          0

Device             tps    kB_read/s    kB_wrtn/s    kB_dscd/s    kB_read    kB_wrtn    kB_dscd
sda               2.00        12.00         4.00         0.00         12          4          0
`

func TestDiskIostat(t *testing.T) {
	mock := sshtesting.NewMockClient("box").WithTools(ToolIostat)
	mock.SetCommandResponse("iostat -d -k 1 2", sshtesting.CommandResponse{Stdout: []byte(iostatOut)})
	var dials int
	src := Disk(remoteWith(mock, &dials))

	rates, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, src.UsesIostat())
	require.Len(t, rates, 1)
	assert.Equal(t, "sda", rates[0].Device)
	assert.Equal(t, 12.0, rates[0].ReadKBps)
	assert.Equal(t, 4.0, rates[0].WriteKBps)
}

func TestDiskRemoteWithoutIostat(t *testing.T) {
	var dials int
	_, err := Disk(remoteWith(sshtesting.NewMockClient("box"), &dials)).Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDeps))
}

func TestDiskCounterFallback(t *testing.T) {
	src := Disk(Local{})
	src.once.Do(func() {}) // settle on counters regardless of the test machine

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []map[string]disk.IOCountersStat{
		{"sda": {ReadBytes: 0, WriteBytes: 0}, "sdb": {ReadBytes: 0, WriteBytes: 0}},
		{"sda": {ReadBytes: 2048, WriteBytes: 1024}, "sdb": {ReadBytes: 0, WriteBytes: 0}},
		{"sda": {ReadBytes: 4096, WriteBytes: 1024}},
		{"sda": {ReadBytes: 4096, WriteBytes: 1024}, "sdb": {ReadBytes: 10, WriteBytes: 10}},
	}
	tick := 0
	src.counters = func(context.Context, ...string) (map[string]disk.IOCountersStat, error) {
		return ticks[tick], nil
	}
	src.now = func() time.Time { return t0.Add(time.Duration(tick) * time.Second) }
	ctx := context.Background()

	rates, err := src.Collect(ctx)
	require.NoError(t, err)
	assert.Empty(t, rates, "first observation has no baseline")

	tick = 1
	rates, err = src.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "sda", rates[0].Device)
	assert.Equal(t, 2.0, rates[0].ReadKBps)
	assert.Equal(t, 1.0, rates[0].WriteKBps)

	tick = 2
	rates, err = src.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 1)

	tick = 3
	rates, err = src.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 1, "sdb vanished and starts over")
	assert.Equal(t, "sda", rates[0].Device)
}

func TestRemoteProcesses(t *testing.T) {
	mock := linuxBox()
	mock.SetCommandResponse("^ps ", sshtesting.CommandResponse{Stdout: []byte(`    PID %CPU %MEM COMMAND
     42 50.0  1.0 worker
      7 10.0  0.5 sshd
      1  0.1  0.1 systemd
`)})
	mock.SetCommandResponse("^grep -H _bytes ", sshtesting.CommandResponse{
		Stdout:   []byte("/proc/42/io:read_bytes: 10\n/proc/42/io:write_bytes: 20\n/proc/42/io:cancelled_write_bytes: 0\n"),
		ExitCode: 2,
	})
	var dials int
	procs, err := Processes(remoteWith(mock, &dials), 2).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 2)

	assert.Equal(t, int32(42), procs[0].PID)
	require.NotNil(t, procs[0].IO)
	assert.Equal(t, uint64(10), procs[0].IO.ReadBytes)
	assert.Equal(t, uint64(20), procs[0].IO.WriteBytes)

	assert.Equal(t, int32(7), procs[1].PID)
	assert.Nil(t, procs[1].IO, "unreadable counters stay nil")

	cmds := mock.Commands()
	assert.Contains(t, cmds[len(cmds)-1], "/proc/42/io /proc/7/io")
}

func TestProcessesListError(t *testing.T) {
	var dials int
	_, err := Processes(remoteWith(sshtesting.NewMockClient("box"), &dials), 5).Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Unavailable(err))
}

func TestMemPercent(t *testing.T) {
	tests := []struct {
		name       string
		rss, total uint64
		want       float64
	}{
		{name: "quarter", rss: 4 << 30, total: 16 << 30, want: 25},
		{name: "nothing resident", rss: 0, total: 16 << 30, want: 0},
		{name: "unknown total", rss: 4 << 30, total: 0, want: 0},
		{name: "whole machine", rss: 8 << 30, total: 8 << 30, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, memPercent(tt.rss, tt.total), 1e-9)
		})
	}
}
