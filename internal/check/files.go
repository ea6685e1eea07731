package check

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/verustcode/valreport/internal/configfiles"
)

// FileCheckResult represents the result of a file check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// checkConfigFile checks the configuration file and offers to create it from
// the embedded template when missing
func (c *Checker) checkConfigFile() error {
	result := FileCheckResult{
		Path:        c.configPath,
		Description: "Server configuration file",
	}
	defer func() { c.report.AddFileResult(result) }()

	if fileExists(c.configPath) {
		result.Exists = true
		printFileStatus(c.configPath, true, false)
		return nil
	}

	printFileStatus(c.configPath, false, false)

	confirm, err := confirmCreate(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result.Error
	}
	if !confirm {
		return nil
	}

	if err := ensureDir(c.configPath); err != nil {
		result.Error = err
		return err
	}
	created, err := configfiles.InitConfig(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to create file %s: %w", c.configPath, err)
		return result.Error
	}

	result.Created = created
	result.Exists = true
	printFileCreated(c.configPath)
	return nil
}

// printFileStatus prints the status of a file check
func printFileStatus(path string, exists bool, created bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if exists {
		green.Printf("  ✓ %s\n", path)
	} else if created {
		green.Printf("  ✓ %s (created)\n", path)
	} else {
		yellow.Printf("  ⚠ %s does not exist\n", path)
	}
}

// printFileCreated prints a message when a file is created
func printFileCreated(path string) {
	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", path)
}
