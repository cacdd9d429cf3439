// Package commands implements the latitude CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/latitude-go/cli/config"
	"github.com/petal-labs/latitude-go/cli/keystore"
	"github.com/petal-labs/latitude-go/core"
	"github.com/petal-labs/latitude-go/gateway"
)

// DefaultProfile is the keystore entry used when no profile is selected.
const DefaultProfile = "default"

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// GatewayFactory creates the API transport for a command invocation.
type GatewayFactory func(apiKey string, opts ...gateway.Option) core.Gateway

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newGateway  GatewayFactory
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	cfgFile     string
	profile     string
	projectID   uint64
	versionUUID string
	jsonOutput  bool
	verbose     bool
	cfg         *config.Config
	runParams   []string
	runStream   bool
	chatPrompt  string
	chatSystem  string
	chatStream  bool
	logPrompt   string
	logResponse string
	initProject uint64
	initDoc     string
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithGatewayFactory injects a gateway factory dependency.
func WithGatewayFactory(factory GatewayFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newGateway = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig: config.LoadConfig,
		newGateway: func(apiKey string, opts ...gateway.Option) core.Gateway {
			return gateway.New(apiKey, opts...)
		},
		newKeystore: keystore.NewKeystore,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "latitude",
		Short: "Latitude - run hosted prompts from the command line",
		Long: `Latitude is a command-line interface for the Latitude prompt platform.

Use it to run prompt documents, continue conversations, record logs,
inspect documents, and manage API keys.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Route cobra's own printing through the injected streams.
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.latitude/config.yaml)")
	root.PersistentFlags().StringVar(&a.profile, "profile", "", "named profile from the config file")
	root.PersistentFlags().Uint64Var(&a.projectID, "project", 0, "project id")
	root.PersistentFlags().StringVar(&a.versionUUID, "version-uuid", "", "version uuid (defaults to the live version)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "print usage and timing details")

	root.AddCommand(a.newRunCommand())
	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newDocumentCommand())
	root.AddCommand(a.newLogsCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Apply config defaults if flags not set.
	if a.profile == "" && cfg.Profile != "" {
		a.profile = cfg.Profile
	}
	if a.profile == "" {
		a.profile = DefaultProfile
	}

	return nil
}

// resolvedProject picks the project id: flag, then profile, then config.
func (a *App) resolvedProject() uint64 {
	if a.projectID != 0 {
		return a.projectID
	}
	if pc := a.cfg.GetProfile(a.profile); pc != nil && pc.Project != 0 {
		return pc.Project
	}
	return a.cfg.Project
}

// resolvedVersion picks the version uuid: flag, then profile, then config.
func (a *App) resolvedVersion() string {
	if a.versionUUID != "" {
		return a.versionUUID
	}
	if pc := a.cfg.GetProfile(a.profile); pc != nil && pc.VersionUUID != "" {
		return pc.VersionUUID
	}
	return a.cfg.VersionUUID
}

// resolvedBaseURL picks the base URL: profile, then config.
func (a *App) resolvedBaseURL() string {
	if pc := a.cfg.GetProfile(a.profile); pc != nil && pc.BaseURL != "" {
		return pc.BaseURL
	}
	return a.cfg.BaseURL
}

// resolveAPIKey finds the API key for the selected profile. The
// environment variable wins over the keystore.
func (a *App) resolveAPIKey() (string, error) {
	if key := os.Getenv(gateway.DefaultAPIKeyEnvVar); key != "" {
		return key, nil
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", fmt.Errorf("failed to open keystore: %w", err)
	}

	key, err := ks.Get(a.profile)
	if err != nil {
		if _, ok := err.(*keystore.ErrKeyNotFound); ok {
			return "", fmt.Errorf("no API key for profile %s: set %s or run 'latitude keys set %s' first",
				a.profile, gateway.DefaultAPIKeyEnvVar, a.profile)
		}
		return "", err
	}

	return key, nil
}

// newClient builds a core.Client wired to the configured gateway.
func (a *App) newClient() (*core.Client, error) {
	apiKey, err := a.resolveAPIKey()
	if err != nil {
		return nil, err
	}

	var opts []gateway.Option
	if project := a.resolvedProject(); project != 0 {
		opts = append(opts, gateway.WithProjectID(project))
	}
	if version := a.resolvedVersion(); version != "" {
		opts = append(opts, gateway.WithVersionID(version))
	}
	if baseURL := a.resolvedBaseURL(); baseURL != "" {
		opts = append(opts, gateway.WithBaseURL(baseURL))
	}

	return core.NewClient(a.newGateway(apiKey, opts...)), nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
