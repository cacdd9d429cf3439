package commands

import (
	"encoding/json"
	"errors"

	"github.com/petal-labs/latitude-go/core"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// ExitCode returns the exit code for this error.
func (e *exitError) ExitCode() int {
	return e.code
}

// exitWithCode creates an error with a specific exit code.
func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// handleRequestError maps a request failure to an exit code: network
// failures exit 3, API rejections exit 2, everything else is treated as
// a validation problem and exits 1. The message line itself is printed
// by cobra when the error propagates out of RunE; JSON mode adds a
// structured error object on stderr.
func (a *App) handleRequestError(err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		if a.jsonOutput {
			a.outputErrorJSON(apiErr)
		}

		if errors.Is(err, core.ErrNetwork) {
			return exitWithCode(ExitNetwork, err)
		}
		return exitWithCode(ExitAPI, err)
	}

	// Validation and local errors
	if a.jsonOutput {
		a.outputSimpleErrorJSON(err)
	}
	return exitWithCode(ExitValidation, err)
}

// outputErrorJSON writes a structured API error as JSON.
func (a *App) outputErrorJSON(apiErr *core.APIError) {
	output := map[string]any{
		"error": map[string]any{
			"status":  apiErr.Status,
			"code":    apiErr.Code,
			"name":    apiErr.Name,
			"message": apiErr.Message,
		},
	}

	encoder := json.NewEncoder(a.stderr)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

// outputSimpleErrorJSON writes a plain error as JSON.
func (a *App) outputSimpleErrorJSON(err error) {
	output := map[string]any{
		"error": map[string]any{
			"message": err.Error(),
		},
	}

	encoder := json.NewEncoder(a.stderr)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}
