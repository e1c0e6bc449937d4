package records

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/reconciler"
	"github.com/crmarques/reason/record"
)

type statusView struct {
	Kind         string             `json:"kind" yaml:"kind"`
	Entries      []reconciler.Entry `json:"entries" yaml:"entries"`
	Unclassified []string           `json:"unclassified,omitempty" yaml:"unclassified,omitempty"`
}

func newStatusView(kind record.Kind, table *reconciler.StatusTable) statusView {
	return statusView{
		Kind:         kind.Name,
		Entries:      table.Entries(),
		Unclassified: table.Unclassified(),
	}
}

func newStatusCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kinds []record.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := common.OpenSession(command, deps, globalFlags)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			views := make([]statusView, 0, len(kinds))
			for _, kind := range kinds {
				table, err := session.Engine.Status(command.Context(), kind)
				if err != nil {
					return err
				}
				views = append(views, newStatusView(kind, table))
			}

			styler := common.NewStyler(command.OutOrStdout(), globalFlags)
			return common.WriteOutput(command, globalFlags.Output, views, func(w io.Writer, items []statusView) error {
				for _, item := range items {
					if err := renderStatusView(w, styler, item); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func renderStatusView(w io.Writer, styler common.Styler, view statusView) error {
	kind, err := record.LookupKind(view.Kind)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, styler.Heading(kindHeading(kind))); err != nil {
		return err
	}
	if len(view.Entries) == 0 {
		_, err := fmt.Fprintln(w, styler.Tone(common.ToneMuted, "  no records"))
		return err
	}

	for _, entry := range view.Entries {
		line := statusLine(styler, entry.Name, styler.Tone(statusTone(entry.Status), entry.Status.Text()))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}

// statusLine renders "> <name> => <text>" with the name padded to 20 columns.
func statusLine(styler common.Styler, name string, text string) string {
	return fmt.Sprintf("%s %-20s => %s", styler.Tone(common.ToneMuted, ">"), name, text)
}

func statusTone(status reconciler.Status) common.Tone {
	switch {
	case status == reconciler.StatusUnchanged:
		return common.ToneMuted
	case status.IsUpstream():
		return common.ToneWarn
	default:
		return common.ToneOK
	}
}
