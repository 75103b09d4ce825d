package sshutil

import "context"

// SSHClient is what the remote collectors need from a connection. Both
// *Client and the mock in sshutil/testing satisfy it.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Alive reports whether the connection still answers.
	Alive() bool

	Close() error
	GetHost() string
}

var _ SSHClient = (*Client)(nil)
