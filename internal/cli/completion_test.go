package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmonerrors "github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/logger"
)

func TestCompletionScripts(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "tmon"},
		{"zsh", "#compdef tmon"},
		{"fish", "complete -c tmon"},
		{"powershell", "tmon"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			defer completionCmd.SetOut(nil)

			require.NoError(t, completionCmd.RunE(completionCmd, []string{tt.shell}))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	err := completionCmd.Args(completionCmd, []string{"tcsh"})
	assert.Error(t, err)
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		clean bool
	}{
		{"nil", nil, true},
		{"killed by context", tea.ErrProgramKilled, true},
		{"interrupted", tea.ErrInterrupted, true},
		{"wrapped cancel", errors.Join(tea.ErrProgramKilled, context.Canceled), true},
		{"other failure", errors.New("tty gone"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitError(tt.err, logger.Noop())
			if tt.clean {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, tmonerrors.IsCode(err, tmonerrors.ErrExec))
		})
	}
}
