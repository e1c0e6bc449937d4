package common

import "github.com/spf13/cobra"

type GlobalFlags struct {
	Config    string
	Overrides map[string]string
	Debug     bool
	NoStatus  bool
	NoColor   bool
	Output    string
}

type InputFlags struct {
	Payload string
	Format  string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "workspace config file (defaults to $REASON_CONFIG or ./reason/config.{json,yaml})")
	command.PersistentFlags().StringToStringVar(&flags.Overrides, "override", nil, "override a workspace config key for this run, e.g. remote.timeout=5s")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	RegisterOutputFlagCompletion(command)
}

func BindInputFlags(command *cobra.Command, flags *InputFlags) {
	command.Flags().StringVarP(&flags.Payload, "payload", "f", "", "payload file path (use '-' to read the object from stdin)")
	command.Flags().StringVarP(&flags.Format, "format", "i", OutputJSON, "input format: json|yaml")
	_ = command.RegisterFlagCompletionFunc("format", fixedCompletion(OutputJSON, OutputYAML))
}

func BindDryRunFlag(command *cobra.Command, dryRun *bool) {
	command.Flags().BoolVar(dryRun, "dry-run", false, "report what would change without writing anything")
}

func RegisterOutputFlagCompletion(command *cobra.Command) {
	_ = command.RegisterFlagCompletionFunc("output", fixedCompletion(OutputAuto, OutputText, OutputJSON, OutputYAML))
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
