package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// ~username is left alone.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ExpandPath expands a leading ~ and any $VAR or ${VAR} references.
// Unset variables expand to the empty string.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	return os.ExpandEnv(ExpandTilde(path))
}
