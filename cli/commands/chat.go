package commands

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <conversation-uuid>",
		Short: "Continue a conversation",
		Long: `Send a follow-up message to an existing conversation.

The conversation uuid is printed by a previous run (or carried in its
JSON output). The service replays the conversation history server-side,
so only the new messages are sent.

Example:
  latitude chat 123e4567-e89b-12d3-a456-426614174000 --prompt "And in French?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "user message to send (required)")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "system message to prepend")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "stream the response as it is produced")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(ctx context.Context, conversationID string) error {
	client, err := a.newClient()
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	builder := client.Chat(conversationID)
	if a.chatSystem != "" {
		builder.System(a.chatSystem)
	}
	builder.User(a.chatPrompt)

	if a.chatStream {
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
