package common

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func IsInteractiveTerminal(command *cobra.Command) bool {
	in, ok := command.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return false
	}
	return IsTerminalWriter(command.OutOrStdout())
}

// HasPipedInput reports whether stdin is a real file or pipe rather than a
// terminal. Readers that are not files, as used in tests, count as piped.
func HasPipedInput(command *cobra.Command) bool {
	in, ok := command.InOrStdin().(*os.File)
	if !ok {
		return true
	}
	if _, err := in.Stat(); err != nil {
		return false
	}
	return !term.IsTerminal(int(in.Fd()))
}

func IsTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// UseColor reports whether styled output should be written to writer.
func UseColor(writer io.Writer, flags *GlobalFlags) bool {
	if flags != nil && flags.NoColor {
		return false
	}
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(strings.ToLower(os.Getenv("TERM"))) == "dumb" {
		return false
	}
	return IsTerminalWriter(writer)
}
