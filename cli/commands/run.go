package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <document-path>",
		Short: "Run a prompt document",
		Long: `Run a prompt document and print its response.

The document is referenced by its path within the project. Template
parameters are passed with repeated --param flags; values parse as JSON
when possible and fall back to plain strings.

Example:
  latitude run onboarding/greeting --param name=Ada
  latitude run onboarding/greeting --stream`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRun(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringArrayVar(&a.runParams, "param", nil, "template parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&a.runStream, "stream", false, "stream the response as it is produced")

	return cmd
}

func (a *App) runRun(ctx context.Context, path string) error {
	params, err := parseParams(a.runParams)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	client, err := a.newClient()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	builder := client.Run(path)
	if len(params) > 0 {
		builder.Parameters(params)
	}

	if a.runStream {
		stream, err := builder.Stream(ctx)
		if err != nil {
			return a.handleRequestError(err)
		}
		return a.printStream(ctx, stream)
	}

	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return a.handleRequestError(err)
	}
	return a.printResponse(resp)
}

// parseParams turns key=value flags into template parameters. Values
// that parse as JSON keep their type; anything else stays a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}

		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			params[key] = parsed
		} else {
			params[key] = value
		}
	}

	return params, nil
}
