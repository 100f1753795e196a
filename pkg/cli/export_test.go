package cli

import "io"

// SetOutput replaces the command output writer and returns a restore func.
func SetOutput(w io.Writer) func() {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}
