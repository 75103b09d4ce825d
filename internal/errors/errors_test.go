package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodesUnique(t *testing.T) {
	codes := []string{ErrConfig, ErrCollect, ErrDeps, ErrSSH, ErrExec}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name:     "message only",
			err:      New(ErrConfig, "Interval too short", ""),
			contains: []string{"✗ Interval too short"},
		},
		{
			name:     "message and suggestion",
			err:      New(ErrDeps, "Missing capabilities", "Install sysstat"),
			contains: []string{"✗ Missing capabilities", "Install sysstat"},
		},
		{
			name:     "with cause",
			err:      WrapWithCode(os.ErrPermission, ErrCollect, "Can't read /proc/1/io", "Run as root"),
			contains: []string{"✗ Can't read /proc/1/io", "permission denied", "Run as root"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			assert.True(t, strings.HasPrefix(out, "✗ "))
		})
	}
}

func TestWrapDefaultsToCollect(t *testing.T) {
	err := Wrap(os.ErrNotExist, "no /proc/stat")
	assert.Equal(t, ErrCollect, err.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsCode(t *testing.T) {
	base := New(ErrSSH, "handshake failed", "")
	wrapped := fmt.Errorf("connecting: %w", base)

	assert.True(t, IsCode(base, ErrSSH))
	assert.True(t, IsCode(wrapped, ErrSSH))
	assert.False(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(nil, ErrSSH))
	assert.False(t, IsCode(errors.New("plain"), ErrSSH))
}

func TestUnavailable(t *testing.T) {
	assert.True(t, Unavailable(Wrap(os.ErrNotExist, "gone")))
	assert.True(t, Unavailable(New(ErrDeps, "nvidia-smi missing", "")))
	assert.False(t, Unavailable(New(ErrConfig, "bad", "")))
	assert.False(t, Unavailable(nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapWithCode(cause, ErrExec, "iostat failed", "")
	require.Equal(t, cause, err.Unwrap())
	assert.Nil(t, New(ErrExec, "x", "").Unwrap())
}
