package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	debugctx "github.com/crmarques/reason/debugctx"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/internal/cli/records"
	"github.com/crmarques/reason/internal/cli/request"
	"github.com/crmarques/reason/internal/cli/version"
	"github.com/crmarques/reason/internal/cli/workspace"
	"github.com/crmarques/reason/internal/logging"
	"github.com/crmarques/reason/record"
)

// usageTemplate lists grouped commands and keeps global flags apart from the
// command's own flags.
const usageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Commands:{{range $cmds}}{{if (and (eq .GroupID "") .IsAvailableCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .LocalNonPersistentFlags.HasAvailableFlags}}

Flags:
{{.LocalNonPersistentFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func NewRootCommand(deps Dependencies) *cobra.Command {
	commandDeps := deps.commandDependencies()
	var globalFlags common.GlobalFlags

	root := &cobra.Command{
		Use:   "reason",
		Short: "Synchronize local reason records with the server",
		Long:  "Keep integrals and functions in a local workspace in sync with the reason server: inspect changes with status, fetch them with pull and deploy local edits with push.",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
		Args: cobra.NoArgs,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			if err := common.ValidateOutputFormat(globalFlags.Output); err != nil {
				return err
			}
			if err := common.ValidateOutputFormatForCommandPath(command.CommandPath(), globalFlags.Output); err != nil {
				return err
			}

			// Replaced by the workspace logger once a command opens the workspace.
			logger, _ := logging.New(logging.Options{Debug: globalFlags.Debug, Stderr: command.ErrOrStderr()})
			command.SetContext(debugctx.WithLogger(command.Context(), logger))

			debugctx.Printf(
				command.Context(),
				"root flags config=%q output=%q no_status=%t no_color=%t overrides=%d command=%q",
				globalFlags.Config,
				globalFlags.Output,
				globalFlags.NoStatus,
				globalFlags.NoColor,
				len(globalFlags.Overrides),
				command.CommandPath(),
			)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetUsageTemplate(usageTemplate)
	root.SetFlagErrorFunc(flagUsageError)

	common.BindGlobalFlags(root, &globalFlags)
	root.PersistentFlags().BoolP("help", "h", false, "help for command")

	root.AddGroup(
		&cobra.Group{ID: "basic", Title: "Basic Commands:"},
		&cobra.Group{ID: "records", Title: "Record Commands:"},
		&cobra.Group{ID: "other", Title: "Other Commands:"},
	)

	basicCommands := []*cobra.Command{
		workspace.NewInitCommand(commandDeps, &globalFlags),
		workspace.NewResetCommand(commandDeps, &globalFlags),
	}
	basicCommands = append(basicCommands, records.NewWorkspaceCommands(commandDeps, &globalFlags)...)
	basicCommands = append(basicCommands, request.NewCommand(commandDeps, &globalFlags))
	for _, command := range basicCommands {
		command.GroupID = "basic"
		root.AddCommand(command)
	}

	for _, kind := range record.Kinds() {
		command := records.NewKindCommand(kind, commandDeps, &globalFlags)
		command.GroupID = "records"
		root.AddCommand(command)
	}

	versionCommand := version.NewCommand(&globalFlags)
	versionCommand.GroupID = "other"
	root.AddCommand(versionCommand)
	root.SetHelpCommandGroupID("other")
	root.SetCompletionCommandGroupID("other")

	return root
}

// flagUsageError turns cobra flag parsing failures into validation errors so
// they exit with the validation code, and prints the usage of the command.
func flagUsageError(command *cobra.Command, err error) error {
	if usage := strings.TrimRight(command.UsageString(), "\n"); usage != "" {
		_, _ = fmt.Fprintln(command.ErrOrStderr(), usage)
	}
	return faults.NewTypedError(faults.ValidationError, err.Error(), nil)
}
