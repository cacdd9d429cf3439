package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newDocumentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Inspect prompt documents",
		Long:  `Inspect prompt documents stored in a Latitude project.`,
	}

	get := &cobra.Command{
		Use:   "get <document-path>",
		Short: "Fetch a prompt document",
		Long: `Fetch a prompt document and print its content.

Example:
  latitude document get onboarding/greeting`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDocumentGet(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(get)
	return cmd
}

func (a *App) runDocumentGet(ctx context.Context, path string) error {
	client, err := a.newClient()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	doc, err := client.Document(path).Get(ctx)
	if err != nil {
		return a.handleRequestError(err)
	}

	if a.jsonOutput {
		output := map[string]any{
			"uuid":         doc.DocumentUUID.String(),
			"path":         doc.Path,
			"content":      doc.Content,
			"content_hash": doc.ContentHash,
		}
		encoder := json.NewEncoder(a.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	fmt.Fprintln(a.stdout, doc.Content)

	if a.verbose {
		fmt.Fprintf(a.stderr, "\nDocument: %s\n", doc.DocumentUUID)
		fmt.Fprintf(a.stderr, "Path: %s\n", doc.Path)
		fmt.Fprintf(a.stderr, "Content hash: %s\n", doc.ContentHash)
	}
	return nil
}
