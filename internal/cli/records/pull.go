package records

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/reconciler"
	"github.com/crmarques/reason/record"
)

func newPullCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kinds []record.Kind, short string) *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "pull",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := common.OpenSession(command, deps, globalFlags)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			reports := make([]reconciler.PullReport, 0, len(kinds))
			for _, kind := range kinds {
				report, err := session.Engine.Pull(command.Context(), kind, reconciler.PullOptions{DryRun: dryRun})
				if err != nil {
					return err
				}
				reports = append(reports, report)
			}

			styler := common.NewStyler(command.OutOrStdout(), globalFlags)
			return common.WriteOutput(command, globalFlags.Output, reports, func(w io.Writer, items []reconciler.PullReport) error {
				for _, item := range items {
					if err := renderPullReport(w, styler, item); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	common.BindDryRunFlag(command, &dryRun)
	return command
}

func renderPullReport(w io.Writer, styler common.Styler, report reconciler.PullReport) error {
	kind, err := record.LookupKind(report.Kind)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, styler.Heading(kindHeading(kind))); err != nil {
		return err
	}
	if len(report.Entries) == 0 {
		_, err := fmt.Fprintln(w, styler.Tone(common.ToneMuted, "  nothing to pull"))
		return err
	}

	for _, entry := range report.Entries {
		text := pullActionText(entry.Action, report.DryRun)
		tone := common.ToneOK
		if entry.Action == reconciler.PullActionRemoved {
			tone = common.ToneWarn
		}
		line := statusLine(styler, entry.Name, styler.Tone(tone, text)+" "+styler.Tone(common.ToneMuted, entry.FilePath))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}

func pullActionText(action reconciler.PullAction, dryRun bool) string {
	switch {
	case dryRun && action == reconciler.PullActionRemoved:
		return "would remove"
	case dryRun:
		return "would write"
	case action == reconciler.PullActionRemoved:
		return "Removed"
	default:
		return "Written"
	}
}
