package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInteractiveTerminal reports whether both stdin and stdout are terminals,
// which is required before presenting interactive prompts.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && IsTTY()
}

// TerminalWidth returns the stdout terminal width, or fallback when unknown.
func TerminalWidth(fallback int) int {
	if !IsTTY() {
		return fallback
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
