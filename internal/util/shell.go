// Package util holds small string helpers shared by the collectors and the CLI.
package util

import "strings"

// ShellQuote makes s safe to pass as one word to a POSIX shell. Words made
// only of characters the shell treats literally are returned as-is so remote
// command lines stay readable in logs.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	// ' becomes '\'' (close, escaped quote, reopen)
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellJoin builds a command line from a program name and its arguments.
// The name is used verbatim; every argument is quoted.
func ShellJoin(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, ShellQuote(a))
	}
	return strings.Join(parts, " ")
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=,:+@%", r)
}
