package scaffold

import (
	"fmt"
	"os"

	"github.com/dyluth/aerie/internal/config"
)

// CheckExisting checks if aerie.yml or crews/ directory already exist
// Returns an error if they do, nil otherwise
func CheckExisting() error {
	var existingFiles []string

	// Check for aerie.yml
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		existingFiles = append(existingFiles, config.DefaultFileName)
	}

	// Check for crews/ directory
	if info, err := os.Stat("crews"); err == nil && info.IsDir() {
		existingFiles = append(existingFiles, "crews/")
	}

	if len(existingFiles) > 0 {
		errMsg := "project already initialized\n\nFound existing"
		if len(existingFiles) == 1 {
			errMsg += fmt.Sprintf(": %s", existingFiles[0])
		} else {
			errMsg += " files:\n"
			for _, file := range existingFiles {
				errMsg += fmt.Sprintf("  - %s\n", file)
			}
		}
		errMsg += "\nUse 'aerie init --force' to reinitialize (this will overwrite existing configuration)"

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
