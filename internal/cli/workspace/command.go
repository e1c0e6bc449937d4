package workspace

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/config"
	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/internal/cli/common"
)

func NewInitCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var (
		format  string
		baseURL string
		apiKey  string
	)

	command := &cobra.Command{
		Use:   "init",
		Short: "Initialize a local reason workspace",
		Long:  "Create the workspace directory, its config file and an empty metadata cache. The --format choice applies to the config file and to every record file.",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if deps.InitWorkspace == nil {
				return faults.NewTypedError(faults.InternalError, "workspace initialization is not configured", nil)
			}

			if !command.Flags().Changed("format") && common.IsInteractiveTerminal(command) {
				selected, err := common.PromptSelect(command, "How will you edit the records locally?", []common.Choice{
					{Label: "JSON", Value: config.ResourceFormatJSON},
					{Label: "YAML", Value: config.ResourceFormatYAML},
				})
				if err != nil {
					return err
				}
				format = selected
			}

			cfg := config.Workspace{
				BaseDir:        config.DefaultBaseDir,
				ResourceFormat: strings.ToLower(strings.TrimSpace(format)),
				Remote:         config.Remote{BaseURL: strings.TrimSpace(baseURL)},
				Auth:           config.Auth{APIKey: strings.TrimSpace(apiKey)},
			}

			resolved, err := deps.InitWorkspace(command.Context(), common.NewWorkspaceOptions(command, globalFlags), cfg)
			if err != nil {
				return err
			}

			out := command.OutOrStdout()
			if _, err := fmt.Fprintf(out, "Workspace initialized at %s\n", resolved.BaseDir); err != nil {
				return err
			}
			if strings.TrimSpace(resolved.Auth.APIKey) == "" {
				_, err := fmt.Fprintf(out, "No API key configured yet: set auth.api-key in the config file or export %s\n", config.APIKeyEnvVar)
				return err
			}
			return nil
		},
	}

	command.Flags().StringVar(&format, "format", config.ResourceFormatJSON, "record and config file format: json|yaml")
	command.Flags().StringVar(&baseURL, "base-url", "", "remote API base URL (defaults to "+config.DefaultBaseURL+")")
	command.Flags().StringVar(&apiKey, "api-key", "", "API key used for every remote call")
	_ = command.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ResourceFormatJSON, config.ResourceFormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	return command
}

func NewResetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "reset",
		Short: "Remove the local workspace",
		Long:  "Remove the workspace directory with every record file, the metadata cache and the config file. Nothing is changed on the server.",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			service, err := common.RequireWorkspaces(command, deps, globalFlags)
			if err != nil {
				return err
			}

			cfg, err := service.Resolve(command.Context(), config.WorkspaceSelection{ConfigPath: globalFlags.Config})
			if err != nil {
				return err
			}

			if !yes {
				if !common.IsInteractiveTerminal(command) {
					return common.ValidationError("reset removes the whole workspace: pass --yes to confirm", nil)
				}
				confirmed, err := common.PromptConfirm(command, fmt.Sprintf("Remove the workspace at %s?", cfg.BaseDir), false)
				if err != nil {
					return err
				}
				if !confirmed {
					_, err := fmt.Fprintln(command.OutOrStdout(), "Reset cancelled")
					return err
				}
			}

			if err := service.Delete(command.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), "Workspace at %s removed\n", cfg.BaseDir)
			return err
		},
	}

	command.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return command
}
