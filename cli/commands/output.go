package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petal-labs/latitude-go/core"
)

// printResponse writes a final response in text or JSON form.
func (a *App) printResponse(resp *core.RunResponse) error {
	if a.jsonOutput {
		return a.outputJSON(resp.UUID.String(), resp.Text, resp.Usage)
	}

	fmt.Fprintln(a.stdout, resp.Text)

	if a.verbose {
		fmt.Fprintf(a.stderr, "\nConversation: %s\n", resp.UUID)
		a.printUsage(resp.Usage)
	}
	return nil
}

// printStream consumes a stream, writing text deltas as they arrive.
// In JSON mode the stream is drained first and the final response is
// printed as a single object.
func (a *App) printStream(ctx context.Context, stream *core.Stream) error {
	if a.jsonOutput {
		result, err := core.DrainStream(ctx, stream)
		if err != nil {
			return a.handleRequestError(err)
		}
		return a.outputJSON(result.UUID.String(), result.Text, result.Usage)
	}

	var usage core.Usage
	var conversation string
	var streamErr error

	for ev := range stream.Events {
		switch e := ev.(type) {
		case core.TextDeltaEvent:
			fmt.Fprint(a.stdout, e.TextDelta)
		case core.ChainCompleteEvent:
			usage = e.Response.Usage
			conversation = e.Response.DocumentLogUUID
		case core.ErrorEvent:
			streamErr = &core.APIError{Code: e.Code, Message: e.Message, Err: core.ErrServer}
		}
	}
	fmt.Fprintln(a.stdout)

	if err, ok := <-stream.Err; ok && err != nil {
		return a.handleRequestError(err)
	}
	if streamErr != nil {
		return a.handleRequestError(streamErr)
	}

	if a.verbose {
		if conversation != "" {
			fmt.Fprintf(a.stderr, "\nConversation: %s\n", conversation)
		}
		a.printUsage(usage)
	}
	return nil
}

// printUsage writes token usage to stderr.
func (a *App) printUsage(usage core.Usage) {
	fmt.Fprintf(a.stderr, "Tokens: %d prompt + %d completion = %d total\n",
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

// outputJSON writes a response envelope as indented JSON.
func (a *App) outputJSON(uuid, text string, usage core.Usage) error {
	output := map[string]any{
		"uuid": uuid,
		"text": text,
		"usage": map[string]int{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
		},
	}

	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
