package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/petal-labs/latitude-go/gateway"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-name>",
		Short: "Initialize a new Latitude project",
		Long: `Initialize a new Latitude project with a standard directory structure.

Creates a project directory with:
  - main.go: A starter Go file using the Latitude SDK
  - latitude.yaml: Project configuration
  - prompts/: Directory for local prompt document copies

Example:
  latitude init myagent
  latitude init myagent --project 123 --document onboarding/greeting`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(args[0])
		},
	}

	cmd.Flags().Uint64Var(&a.initProject, "project", 0, "project id to write into the scaffold")
	cmd.Flags().StringVar(&a.initDoc, "document", "my-prompt", "document path used in the generated code")

	return cmd
}

func (a *App) runInit(projectPath string) error {
	projectName := filepath.Base(projectPath)

	// Validate project name (just the base name, not full path)
	if err := validateProjectName(projectName); err != nil {
		return err
	}

	// Check if directory already exists
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %q already exists", projectPath)
	}

	// Create directory structure
	dirs := []string{
		projectPath,
		filepath.Join(projectPath, "prompts"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Create .gitkeep files in empty directories
	gitkeepDirs := []string{
		filepath.Join(projectPath, "prompts"),
	}

	for _, dir := range gitkeepDirs {
		path := filepath.Join(dir, ".gitkeep")
		if err := os.WriteFile(path, []byte{}, 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
	}

	data := templateData{
		Project:  a.initProject,
		Document: a.initDoc,
	}

	// Generate main.go
	mainPath := filepath.Join(projectPath, "main.go")
	if err := generateFile(mainPath, mainGoTemplate, data); err != nil {
		return fmt.Errorf("failed to create main.go: %w", err)
	}

	// Generate latitude.yaml
	configPath := filepath.Join(projectPath, "latitude.yaml")
	if err := generateFile(configPath, latitudeYamlTemplate, data); err != nil {
		return fmt.Errorf("failed to create latitude.yaml: %w", err)
	}

	// Print success message
	fmt.Fprintf(a.stdout, "Created Latitude project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintf(a.stdout, "  export %s=<your-key>\n", gateway.DefaultAPIKeyEnvVar)
	fmt.Fprintln(a.stdout, "  go run main.go")

	return nil
}

func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	// Check for invalid characters
	validName := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}

	// Check for reserved names
	reserved := []string{".", "..", "latitude"}
	for _, r := range reserved {
		if name == r {
			return fmt.Errorf("invalid project name %q: reserved name", name)
		}
	}

	return nil
}

type templateData struct {
	Project  uint64
	Document string
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"fmt"
	"os"

	"github.com/petal-labs/latitude-go/core"
	"github.com/petal-labs/latitude-go/gateway"
)

func main() {
	gw, err := gateway.NewFromEnv({{if .Project}}gateway.WithProjectID({{.Project}}){{end}})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	c := core.NewClient(gw)

	resp, err := c.Run("{{.Document}}").GetResponse(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Println(resp.Text)
}
`

var latitudeYamlTemplate = `# Latitude project configuration
# Copy to ~/.latitude/config.yaml or pass with --config.
{{if .Project}}project: {{.Project}}
{{else}}# project: <your-project-id>
{{end}}version_uuid: live

# API keys are set via 'latitude keys set' or the LATITUDE_API_KEY
# environment variable.
`
