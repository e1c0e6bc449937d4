package request

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/reason/internal/cli/common"
	"github.com/crmarques/reason/reconciler"
	"github.com/crmarques/reason/server"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var (
		api        string
		message    string
		expression string
	)

	command := &cobra.Command{
		Use:   "request",
		Short: "Send a message to a pulled integral",
		Long:  "Send a message to an integral found by name in the last pulled integrals. The message is read from stdin when --message is not set.",
		Example: `  reason request --api chat --message "hello"
  echo "hello" | reason request --api chat --jq '.messages[-1].content'`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			text, err := resolveMessage(command, message)
			if err != nil {
				return err
			}

			session, err := common.OpenSession(command, deps, globalFlags)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			result, err := session.Engine.Run(command.Context(), reconciler.RunOptions{API: api, Message: text})
			if err != nil {
				return err
			}

			var value any = result.Body
			if strings.TrimSpace(expression) != "" {
				value, err = server.ApplyJQ(command.Context(), result.Body, expression)
				if err != nil {
					return err
				}
			}

			return common.WriteOutput(command, globalFlags.Output, value, renderValue)
		},
	}

	command.Flags().StringVar(&api, "api", "", "integral name")
	command.Flags().StringVar(&message, "message", "", "message sent to the integral")
	command.Flags().StringVar(&expression, "jq", "", "jq expression applied to the response")
	return command
}

func resolveMessage(command *cobra.Command, message string) (string, error) {
	if text := strings.TrimSpace(message); text != "" {
		return text, nil
	}

	data, err := common.ReadOptionalInput(command, common.InputFlags{})
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text, nil
	}

	if common.IsInteractiveTerminal(command) {
		text, err := common.PromptInput(command, "Message", "")
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return "", common.ValidationError("a message is required: use --message or stdin", nil)
}

// renderValue prints strings as is and everything else as indented JSON.
func renderValue(w io.Writer, value any) error {
	if text, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
