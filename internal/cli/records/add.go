package records

import (
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/reconciler"
	"github.com/crmarques/reason/record"
)

type addView struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	FilePath string `json:"filePath" yaml:"filePath"`
}

func newAddCommand(kind record.Kind, deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var (
		name  string
		sets  []string
		input common.InputFlags
	)

	command := &cobra.Command{
		Use:   "add",
		Short: "Scaffold a new local " + kind.Label,
		Long: fmt.Sprintf(
			"Scaffold a new local %s. Fields come from --payload and --set; --set wins on conflicts. The record is created on the server by the next push.",
			kind.Label,
		),
		Example: fmt.Sprintf("  reason %s add --name greeter --set description=\"says hi\",retries=2", kind.Name),
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			fields := map[string]any{}

			data, err := common.ReadOptionalInput(command, input)
			if err != nil {
				return err
			}
			if data != nil {
				decoded, err := common.DecodeRecordFields(data, input.Format)
				if err != nil {
					return err
				}
				maps.Copy(fields, decoded)
			}

			assignments, err := common.ParseDottedAssignments(sets)
			if err != nil {
				return err
			}
			maps.Copy(fields, assignments)

			if name == "" && common.IsInteractiveTerminal(command) {
				suggested := reconciler.DefaultRecordName(kind)
				answer, err := common.PromptInput(command, kind.Label+" name", suggested)
				if err != nil {
					return err
				}
				name = answer
				if name == "" {
					name = suggested
				}
			}

			session, err := common.OpenSession(command, deps, globalFlags)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			local, err := session.Engine.Add(command.Context(), kind, reconciler.AddOptions{Name: name, Fields: fields})
			if err != nil {
				return err
			}

			view := addView{Kind: kind.Name, Name: local.Name, FilePath: local.FilePath}
			return common.WriteOutput(command, globalFlags.Output, view, func(w io.Writer, item addView) error {
				_, err := fmt.Fprintf(w, "%s %s added at %s, push to create it upstream\n", kind.Label, item.Name, item.FilePath)
				return err
			})
		},
	}

	command.Flags().StringVar(&name, "name", "", "record name (defaults to "+strings.ToLower(kind.Label)+"_<random>)")
	command.Flags().StringArrayVar(&sets, "set", nil, "field assignment key=value, repeatable or comma separated")
	common.BindInputFlags(command, &input)
	return command
}
