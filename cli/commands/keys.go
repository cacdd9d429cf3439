package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/latitude-go/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long: `Manage API keys for Latitude profiles. Keys are stored in an
encrypted file keystore. With no profile argument the default profile
is used.`,
	}

	set := &cobra.Command{
		Use:   "set [profile]",
		Short: "Set the API key for a profile",
		Long:  `Set the API key for a profile. The key is prompted without echo for security.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysSet(profileArg(args))
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles with stored API keys",
		Long:  `List all profiles with stored API keys. Only profile names are shown, never key values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysList()
		},
	}

	del := &cobra.Command{
		Use:   "delete [profile]",
		Short: "Delete the API key for a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysDelete(profileArg(args))
		},
	}

	cmd.AddCommand(set)
	cmd.AddCommand(list)
	cmd.AddCommand(del)
	return cmd
}

// profileArg picks the profile from the command arguments.
func profileArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return DefaultProfile
}

func (a *App) runKeysSet(profile string) error {
	apiKey, err := a.readSecret(fmt.Sprintf("Enter API key for profile %s: ", profile))
	if err != nil {
		return err
	}

	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Set(profile, apiKey); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for profile %s stored successfully.\n", profile)
	return nil
}

func (a *App) runKeysList() error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	names, err := ks.List()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No API keys stored.")
		return nil
	}

	fmt.Fprintln(a.stdout, "Stored keys:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}

	return nil
}

func (a *App) runKeysDelete(profile string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Delete(profile); err != nil {
		if _, ok := err.(*keystore.ErrKeyNotFound); ok {
			return fmt.Errorf("no key stored for profile %s", profile)
		}
		return fmt.Errorf("failed to delete key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for profile %s deleted.\n", profile)
	return nil
}

// readSecret prompts for a value, hiding the input when stdin is a
// terminal. Piped and injected inputs are read as a plain line.
func (a *App) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.stdout, prompt)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		fmt.Fprintln(a.stdout) // Newline after hidden input
		return string(keyBytes), nil
	}

	reader := bufio.NewReader(a.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
