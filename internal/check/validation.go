package check

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/verustcode/valreport/internal/config"
)

// ValidationResult represents the result of one validation step
type ValidationResult struct {
	Path     string
	Valid    bool
	Error    error
	Warnings []string
}

// chromeCandidates are the executable names tried when no chrome_path is set
var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

func defaultLookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// validateConfig loads the configuration file, falling back to defaults when
// the file was not created
func (c *Checker) validateConfig() (*config.Config, error) {
	result := ValidationResult{Path: c.configPath}

	if !fileExists(c.configPath) {
		result.Valid = true
		result.Warnings = append(result.Warnings, "file does not exist, defaults will be used")
		c.report.AddValidationResult(result)
		printValidationResult(result)
		return config.Default(), nil
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("format error: %v", err)
		c.report.AddValidationResult(result)
		printValidationResult(result)
		return nil, result.Error
	}

	result.Valid = true
	c.report.AddValidationResult(result)
	printValidationResult(result)
	return cfg, nil
}

// checkRuntime records and prints the runtime dependency checks
func (c *Checker) checkRuntime(cfg *config.Config) {
	for _, r := range c.runtimeChecks(cfg) {
		c.report.AddValidationResult(r)
		printValidationResult(r)
	}
}

// runtimeChecks inspects what the configuration needs at runtime
func (c *Checker) runtimeChecks(cfg *config.Config) []ValidationResult {
	return []ValidationResult{
		c.checkChrome(cfg.Render.ChromePath),
		checkDatabaseDir(cfg),
		checkBackend(cfg),
	}
}

// checkChrome looks for a Chrome executable. Without one only HTML output works.
func (c *Checker) checkChrome(configured string) ValidationResult {
	result := ValidationResult{Path: "chrome"}

	if configured != "" {
		result.Path = configured
		if _, err := os.Stat(configured); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("render.chrome_path %s not found, PDF generation will fail", configured))
			return result
		}
		result.Valid = true
		return result
	}

	for _, name := range chromeCandidates {
		if path, err := c.lookPath(name); err == nil {
			result.Path = path
			result.Valid = true
			return result
		}
	}
	result.Warnings = append(result.Warnings,
		"no Chrome executable found on PATH, PDF generation will fail")
	return result
}

// checkDatabaseDir verifies the history database directory is writable
func checkDatabaseDir(cfg *config.Config) ValidationResult {
	result := ValidationResult{Path: cfg.Database.Path}
	if !cfg.History.Enabled {
		result.Valid = true
		return result
	}

	dir := filepath.Dir(cfg.Database.Path)
	info, err := os.Stat(dir)
	if err != nil {
		// created on startup
		result.Valid = true
		return result
	}
	if !info.IsDir() {
		result.Error = fmt.Errorf("%s is not a directory", dir)
		return result
	}

	f, err := os.CreateTemp(dir, ".valreport-check-*")
	if err != nil {
		result.Error = fmt.Errorf("database directory %s is not writable: %v", dir, err)
		return result
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	result.Valid = true
	return result
}

// checkBackend warns when no valuation records API is configured
func checkBackend(cfg *config.Config) ValidationResult {
	result := ValidationResult{Path: "backend"}
	if cfg.Backend.BaseURL == "" {
		result.Warnings = append(result.Warnings,
			"backend.base_url not set, valuation endpoints are disabled")
		return result
	}
	result.Path = cfg.Backend.BaseURL
	result.Valid = true
	return result
}

// printValidationResult prints one validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	switch {
	case result.Error != nil:
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	case result.Valid:
		green.Printf("  ✓ %s\n", result.Path)
	default:
		yellow.Printf("  ⚠ %s\n", result.Path)
	}

	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
