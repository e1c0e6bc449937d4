package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/cli/commandmeta"
	"github.com/crmarques/reason/internal/cli/common"
)

type (
	WorkspaceOptions = common.WorkspaceOptions
	Session          = common.Session
)

// Dependencies opens workspaces on demand so commands such as init and
// version run without a config file.
type Dependencies struct {
	OpenWorkspace func(ctx context.Context, opts WorkspaceOptions) (Session, error)
	InitWorkspace func(ctx context.Context, opts WorkspaceOptions, cfg config.Workspace) (config.Workspace, error)
	Workspaces    func(opts WorkspaceOptions) config.WorkspaceService
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		OpenWorkspace: d.OpenWorkspace,
		InitWorkspace: d.InitWorkspace,
		Workspaces:    d.Workspaces,
	}
}

// Execute runs the command line and reports the outcome on stderr. Mutating
// commands also get an [OK] or [ERROR] status line unless --no-status is set.
func Execute(ctx context.Context, deps Dependencies) error {
	root := NewRootCommand(deps)
	command, err := root.ExecuteContextC(ctx)

	stderr := root.ErrOrStderr()
	styler := common.NewStyler(stderr, &common.GlobalFlags{NoColor: parsedBoolFlag(commandFlags(command), "no-color")})
	emitStatus := shouldEmitExecutionStatus(command)

	if err != nil {
		if emitStatus {
			writeExecutionErrorStatus(stderr, styler, err)
		} else {
			_, _ = fmt.Fprintln(stderr, strings.TrimSpace(err.Error()))
		}
		writeIssues(stderr, err)
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(stderr, styler)
	}
	return nil
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError, faults.LookupError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.TransportError:
		return 6
	case faults.ConfigMissingError:
		return 7
	default:
		return 1
	}
}

func writeIssues(w io.Writer, err error) {
	for _, issue := range faults.IssuesOf(err) {
		_, _ = fmt.Fprintf(w, "  - %s\n", issue.String())
	}
}

func writeExecutionOKStatus(w io.Writer, styler common.Styler) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", styler.Tone(common.ToneOK, "[OK]"))
}

func writeExecutionErrorStatus(w io.Writer, styler common.Styler, err error) {
	_, _ = fmt.Fprintf(
		w,
		"%s command execution failed: %s.\n",
		styler.Tone(common.ToneError, "[ERROR]"),
		strings.TrimSuffix(strings.TrimSpace(err.Error()), "."),
	)
}

// shouldEmitExecutionStatus decides from the command cobra actually ran, with
// its flags already parsed.
func shouldEmitExecutionStatus(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	flags := command.Flags()
	if parsedBoolFlag(flags, "no-status") || parsedBoolFlag(flags, "help") {
		return false
	}
	return commandmeta.EmitsExecutionStatusPath(strings.TrimSpace(command.CommandPath()))
}

func commandFlags(command *cobra.Command) *pflag.FlagSet {
	if command == nil {
		return nil
	}
	return command.Flags()
}

// parsedBoolFlag is false for unknown and non-bool flags.
func parsedBoolFlag(flags *pflag.FlagSet, name string) bool {
	if flags == nil || flags.Lookup(name) == nil {
		return false
	}
	value, err := flags.GetBool(name)
	return err == nil && value
}
