// Package testing provides a fake SSH connection that answers the commands
// the remote collectors send: cat of /proc files, command -v lookups, and
// canned responses for everything else.
package testing

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/rileyhilliard/tmon/pkg/sshutil"
)

// CommandResponse is a canned answer for a command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockClient simulates a remote Linux host.
type MockClient struct {
	mu       sync.Mutex
	host     string
	files    map[string]string
	tools    map[string]bool
	commands map[string]CommandResponse // exact command or regex -> response
	history  []string
	closed   bool
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a host with no files and no tools.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		files:    make(map[string]string),
		tools:    make(map[string]bool),
		commands: make(map[string]CommandResponse),
	}
}

// WithFiles adds files readable with cat.
func (m *MockClient) WithFiles(files map[string]string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, content := range files {
		m.files[path] = content
	}
	return m
}

// WithTools marks executables as installed for command -v.
func (m *MockClient) WithTools(names ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		m.tools[n] = true
	}
	return m
}

// SetCommandResponse registers a response for an exact command or a regex.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// Commands returns every command run so far.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Exec answers cmd from canned responses, then files and tools.
func (m *MockClient) Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.history = append(m.history, cmd)

	if resp, ok := m.commands[cmd]; ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}
	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
		}
	}

	cmd = strings.TrimSpace(strings.TrimSuffix(cmd, " 2>/dev/null"))
	switch {
	case strings.HasPrefix(cmd, "cat "):
		path := unquote(strings.TrimPrefix(cmd, "cat "))
		content, ok := m.files[path]
		if !ok {
			return nil, []byte("cat: " + path + ": No such file or directory"), 1, nil
		}
		return []byte(content), nil, 0, nil

	case strings.HasPrefix(cmd, "command -v "):
		name := unquote(strings.TrimPrefix(cmd, "command -v "))
		if m.tools[name] {
			return []byte("/usr/bin/" + name + "\n"), nil, 0, nil
		}
		return nil, nil, 1, nil

	case cmd == "uname -s":
		return []byte("Linux\n"), nil, 0, nil
	}

	return nil, []byte(cmd + ": command not found"), 127, nil
}

// Alive reports whether Close has not been called.
func (m *MockClient) Alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// unquote strips one layer of single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
