package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage document logs",
		Long:  `Record completions produced outside Latitude against a prompt document.`,
	}

	create := &cobra.Command{
		Use:   "create <document-path>",
		Short: "Record a completion as a document log",
		Long: `Record a completion that was produced elsewhere so it shows up in
the document's log history and can be evaluated.

Example:
  latitude logs create onboarding/greeting --prompt "Hi" --response "Hello!"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogsCreate(cmd.Context(), args[0])
		},
	}

	create.Flags().StringVar(&a.logPrompt, "prompt", "", "user message that produced the completion (required)")
	create.Flags().StringVar(&a.logResponse, "response", "", "completion text to record (required)")
	create.MarkFlagRequired("prompt")
	create.MarkFlagRequired("response")

	cmd.AddCommand(create)
	return cmd
}

func (a *App) runLogsCreate(ctx context.Context, path string) error {
	client, err := a.newClient()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	log, err := client.Log(path).
		User(a.logPrompt).
		Response(a.logResponse).
		Create(ctx)
	if err != nil {
		return a.handleRequestError(err)
	}

	if a.jsonOutput {
		output := map[string]any{
			"id":     log.ID,
			"uuid":   log.UUID.String(),
			"source": log.Source,
		}
		encoder := json.NewEncoder(a.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	fmt.Fprintf(a.stdout, "Log %d created (uuid %s).\n", log.ID, log.UUID)
	return nil
}
