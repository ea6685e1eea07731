// Package check provides environment checking and initialization.
// It helps users set up their local ValReport configuration properly.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/verustcode/valreport/internal/config"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// Checker handles environment checking and initialization
type Checker struct {
	// configPath is the configuration file being checked
	configPath string
	report     *Report
	// lookPath resolves executables; replaced in tests
	lookPath func(string) (string, error)
}

// NewChecker creates a new environment checker for the config file at configPath
func NewChecker(configPath string) *Checker {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	return &Checker{
		configPath: configPath,
		report:     NewReport(),
		lookPath:   defaultLookPath,
	}
}

// ConfigPath returns the path of the checked configuration file
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// Run executes the full interactive environment check
func (c *Checker) Run() error {
	c.printHeader()

	fmt.Println()
	printSection("Checking configuration file")
	if err := c.checkConfigFile(); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}

	fmt.Println()
	printSection("Validating configuration")
	cfg, err := c.validateConfig()
	if err != nil {
		c.report.Print()
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println()
	printSection("Checking runtime dependencies")
	c.checkRuntime(cfg)

	fmt.Println()
	c.report.Print()

	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("ValReport Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// confirmCreate asks user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates the parent directory of path if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt for user input and does not create files.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	// A missing file is not fatal: the server runs on defaults
	if !fileExists(c.configPath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Configuration file not found: %s, using defaults", c.configPath))
		result.Suggestions = append(result.Suggestions,
			"Run 'valreport check' to create a configuration file from the template")
		c.collectRuntime(config.Default(), result)
		return result
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid %s: %v", c.configPath, err))
		return result
	}

	c.collectRuntime(cfg, result)
	return result
}

// collectRuntime adds runtime dependency findings to result
func (c *Checker) collectRuntime(cfg *config.Config, result *CheckResult) {
	for _, r := range c.runtimeChecks(cfg) {
		if r.Valid {
			continue
		}
		if r.Error != nil {
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Path, r.Error))
		}
		result.Warnings = append(result.Warnings, r.Warnings...)
	}
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}
