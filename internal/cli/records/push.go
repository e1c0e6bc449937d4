package records

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/reconciler"
	"github.com/crmarques/reason/record"
)

func newPushCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kinds []record.Kind, short string) *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "push",
		Short: short,
		Long:  "Push local changes to the server. The push is refused while the server holds changes that were not pulled yet.",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			session, err := common.OpenSession(command, deps, globalFlags)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			styler := common.NewStyler(command.OutOrStdout(), globalFlags)
			render := func(w io.Writer, items []reconciler.PushReport) error {
				for _, item := range items {
					if err := renderPushReport(w, styler, item); err != nil {
						return err
					}
				}
				return nil
			}

			reports := make([]reconciler.PushReport, 0, len(kinds))
			for _, kind := range kinds {
				report, err := session.Engine.Push(command.Context(), kind, reconciler.PushOptions{DryRun: dryRun})
				if err != nil {
					// Actions that already ran stay visible before the error.
					if len(report.Actions) > 0 {
						reports = append(reports, report)
					}
					if len(reports) > 0 {
						_ = common.WriteOutput(command, globalFlags.Output, reports, render)
					}
					return err
				}
				reports = append(reports, report)
			}

			return common.WriteOutput(command, globalFlags.Output, reports, render)
		},
	}

	common.BindDryRunFlag(command, &dryRun)
	return command
}

func renderPushReport(w io.Writer, styler common.Styler, report reconciler.PushReport) error {
	kind, err := record.LookupKind(report.Kind)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, styler.Heading(kindHeading(kind))); err != nil {
		return err
	}
	if len(report.Actions) == 0 {
		if _, err := fmt.Fprintln(w, styler.Tone(common.ToneMuted, "  nothing to push")); err != nil {
			return err
		}
	}

	for _, action := range report.Actions {
		text := styler.Tone(pushOutcomeTone(action.Outcome), pushOutcomeText(action))
		if action.Message != "" {
			text += " " + styler.Tone(common.ToneMuted, action.Message)
		}
		if _, err := fmt.Fprintln(w, statusLine(styler, action.Name, text)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	// The table after the closing pull shows where the workspace converged.
	if report.Final == nil {
		return nil
	}
	return renderStatusView(w, styler, newStatusView(kind, report.Final))
}

func pushOutcomeText(action reconciler.PushAction) string {
	switch action.Outcome {
	case reconciler.PushOutcomePlanned:
		return "would " + action.Operation
	case reconciler.PushOutcomeCreated:
		return "Created"
	case reconciler.PushOutcomeUpdated:
		return "Updated"
	case reconciler.PushOutcomeDeleted:
		return "Deleted"
	case reconciler.PushOutcomeFailed:
		return action.Operation + " failed:"
	default:
		return string(action.Outcome)
	}
}

func pushOutcomeTone(outcome reconciler.PushOutcome) common.Tone {
	switch outcome {
	case reconciler.PushOutcomeFailed:
		return common.ToneError
	case reconciler.PushOutcomeSkipped:
		return common.ToneWarn
	case reconciler.PushOutcomePlanned:
		return common.TonePlain
	default:
		return common.ToneOK
	}
}
