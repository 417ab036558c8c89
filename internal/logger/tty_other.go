//go:build !linux

package logger

import "io"

// Terminal detection is only wired on Linux; elsewhere auto means text.
func isTerminal(io.Writer) bool {
	return false
}
