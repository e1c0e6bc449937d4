package records

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/record"
)

// NewWorkspaceCommands returns status, pull and push acting on every kind.
func NewWorkspaceCommands(deps common.CommandDependencies, globalFlags *common.GlobalFlags) []*cobra.Command {
	kinds := record.Kinds()
	return []*cobra.Command{
		newStatusCommand(deps, globalFlags, kinds, "Show local and upstream changes of every record kind"),
		newPullCommand(deps, globalFlags, kinds, "Pull every record kind from the server"),
		newPushCommand(deps, globalFlags, kinds, "Push local changes of every record kind to the server"),
	}
}

func NewKindCommand(kind record.Kind, deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	kinds := []record.Kind{kind}
	plural := kind.Plural()

	command := &cobra.Command{
		Use:     kind.Name,
		Aliases: kind.Aliases,
		Short:   "Manage " + plural,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	command.AddCommand(
		newStatusCommand(deps, globalFlags, kinds, "Show local and upstream changes of "+plural),
		newPullCommand(deps, globalFlags, kinds, "Pull "+plural+" from the server"),
		newPushCommand(deps, globalFlags, kinds, "Push local "+plural+" to the server"),
		newAddCommand(kind, deps, globalFlags),
	)
	return command
}

func kindHeading(kind record.Kind) string {
	return "Reason " + kind.Label + "s"
}
