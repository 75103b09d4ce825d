// Package collect implements the metric sources behind the monitor panels,
// reading either the local machine or one remote host over SSH.
package collect

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/util"
	"github.com/rileyhilliard/tmon/pkg/sshutil"
)

// Host is the machine being monitored.
type Host interface {
	// Name is "localhost" or the SSH target.
	Name() string
	IsLocal() bool

	ReadFile(ctx context.Context, path string) (string, error)

	// Run executes a tool and returns its stdout. A non-zero exit returns
	// whatever stdout was produced along with an error.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// HasTool reports whether an executable is on PATH.
	HasTool(ctx context.Context, name string) bool

	Platform(ctx context.Context) (Platform, error)
	Close() error
}

// Local reads the machine tmon runs on.
type Local struct{}

var _ Host = Local{}

func (Local) Name() string  { return "localhost" }
func (Local) IsLocal() bool { return true }
func (Local) Close() error  { return nil }

func (Local) ReadFile(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read "+path, "")
	}
	return string(data), nil
}

func (Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), errors.WrapWithCode(err, errors.ErrCollect,
			fmt.Sprintf("%s failed", name), firstLine(stderr.String()))
	}
	return stdout.String(), nil
}

func (Local) HasTool(_ context.Context, name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (Local) Platform(context.Context) (Platform, error) {
	return ParsePlatform(runtime.GOOS), nil
}

// Dialer opens an SSH connection to host.
type Dialer func(host string, timeout time.Duration) (sshutil.SSHClient, error)

// DialSSH is the Dialer backed by sshutil.Dial.
func DialSSH(host string, timeout time.Duration) (sshutil.SSHClient, error) {
	client, err := sshutil.Dial(host, timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Remote reads a host over a single SSH connection, reconnecting when the
// connection stops answering between ticks.
type Remote struct {
	mu       sync.Mutex
	target   string
	timeout  time.Duration
	dial     Dialer
	client   sshutil.SSHClient
	platform Platform
}

var _ Host = (*Remote)(nil)

// NewRemote creates a remote host. No connection is made until first use.
func NewRemote(target string, timeout time.Duration, dial Dialer) *Remote {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if dial == nil {
		dial = DialSSH
	}
	return &Remote{target: target, timeout: timeout, dial: dial}
}

func (r *Remote) Name() string  { return r.target }
func (r *Remote) IsLocal() bool { return false }

// Connect dials now instead of on first use, so startup can report SSH
// failures before the dashboard opens.
func (r *Remote) Connect() error {
	_, err := r.conn()
	return err
}

func (r *Remote) conn() (sshutil.SSHClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if r.client.Alive() {
			return r.client, nil
		}
		_ = r.client.Close()
		r.client = nil
	}

	client, err := r.dial(r.target, r.timeout)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// drop forgets a connection that failed mid-command.
func (r *Remote) drop(client sshutil.SSHClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == client {
		_ = r.client.Close()
		r.client = nil
	}
}

func (r *Remote) exec(ctx context.Context, cmd string) (string, error) {
	client, err := r.conn()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrCollect, "Couldn't reach "+r.target, "")
	}

	stdout, stderr, code, err := client.Exec(ctx, cmd)
	if err != nil {
		if ctx.Err() == nil {
			r.drop(client)
		}
		return "", errors.WrapWithCode(err, errors.ErrCollect, fmt.Sprintf("'%s' failed on %s", cmd, r.target), "")
	}
	if code != 0 {
		return string(stdout), errors.New(errors.ErrCollect,
			fmt.Sprintf("'%s' exited %d on %s", cmd, code, r.target), firstLine(string(stderr)))
	}
	return string(stdout), nil
}

func (r *Remote) ReadFile(ctx context.Context, path string) (string, error) {
	return r.exec(ctx, "cat "+util.ShellQuote(path))
}

func (r *Remote) Run(ctx context.Context, name string, args ...string) (string, error) {
	return r.exec(ctx, util.ShellJoin(name, args...))
}

func (r *Remote) HasTool(ctx context.Context, name string) bool {
	_, err := r.exec(ctx, "command -v "+util.ShellQuote(name))
	return err == nil
}

// Platform runs uname once and caches the answer.
func (r *Remote) Platform(ctx context.Context) (Platform, error) {
	r.mu.Lock()
	cached := r.platform
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	out, err := r.exec(ctx, PlatformDetectCommand)
	if err != nil {
		return PlatformUnknown, err
	}
	p := ParsePlatform(strings.TrimSpace(out))

	r.mu.Lock()
	r.platform = p
	r.mu.Unlock()
	return p, nil
}

// Close drops the connection and the shared agent socket.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer sshutil.CloseAgent()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
