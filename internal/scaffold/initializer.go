package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/aerie/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates the aerie project structure
// If force is true, it will remove existing aerie.yml and crews/ directory
func Initialize(force bool) error {
	// Handle --force flag
	if force {
		if err := handleForce(); err != nil {
			return err
		}
	}

	// Get template files
	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	// Create directories
	if err := createDirectories(); err != nil {
		return err
	}

	// Write files
	if err := writeFiles(files); err != nil {
		return err
	}

	// Validate created files
	if err := validateCreatedFiles(); err != nil {
		return err
	}

	return nil
}

// handleForce removes existing files if --force was specified
func handleForce() error {
	// Remove aerie.yml if it exists
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		fmt.Printf("⚠️  Removing existing %s...\n", config.DefaultFileName)
		if err := os.Remove(config.DefaultFileName); err != nil {
			return fmt.Errorf("failed to remove %s: %w", config.DefaultFileName, err)
		}
	}

	// Remove crews/ directory if it exists
	if info, err := os.Stat("crews"); err == nil && info.IsDir() {
		fmt.Println("⚠️  Removing existing crews/ directory...")
		if err := os.RemoveAll("crews"); err != nil {
			return fmt.Errorf("failed to remove crews/ directory: %w", err)
		}
	}

	return nil
}

// getTemplateFiles reads and processes all template files
func getTemplateFiles() ([]FileInfo, error) {
	files := []FileInfo{}

	// aerie.yml
	aerieYml, err := templatesFS.ReadFile("templates/aerie.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read aerie.yml template: %w", err)
	}
	files = append(files, FileInfo{
		Path:        config.DefaultFileName,
		Content:     aerieYml,
		Permissions: 0644,
	})

	// crews/example-crew/run.sh
	runSh, err := templatesFS.ReadFile("templates/run.sh.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read run.sh template: %w", err)
	}
	files = append(files, FileInfo{
		Path:        filepath.Join("crews", "example-crew", "run.sh"),
		Content:     runSh,
		Permissions: 0755, // Executable
	})

	// crews/example-crew/README.md
	readme, err := templatesFS.ReadFile("templates/README.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read README.md template: %w", err)
	}
	files = append(files, FileInfo{
		Path:        filepath.Join("crews", "example-crew", "README.md"),
		Content:     readme,
		Permissions: 0644,
	})

	return files, nil
}

// createDirectories creates the necessary directory structure
func createDirectories() error {
	dirs := []string{
		"crews",
		filepath.Join("crews", "example-crew"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks that the scaffolded aerie.yml passes the
// same validation the daemon and CLI apply when loading it.
func validateCreatedFiles() error {
	if _, err := config.Load(config.DefaultFileName); err != nil {
		return fmt.Errorf("created %s failed validation: %w", config.DefaultFileName, err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized aerie project!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ aerie.yml")
	fmt.Println("  ✓ crews/example-crew/run.sh")
	fmt.Println("  ✓ crews/example-crew/README.md")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Customize aerie.yml with your overseer name and crews")
	fmt.Println("  2. Run 'overseerd' to start the overseer daemon")
	fmt.Println("  3. Run 'aerie say \"hello\"' to talk to it")
}
