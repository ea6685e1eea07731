package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/notification"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/report/exporter"
	"github.com/verustcode/valreport/pkg/logger"
)

var renderOpts struct {
	input  string
	id     string
	format string
	output string
}

// renderCmd renders one record to a file
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a valuation record to PDF or HTML",
	Long: `Render a valuation record read from a JSON file (or "-" for stdin), or fetched
from the valuation records API by id.

  valreport render --input record.json --format pdf --output out/
  valreport render --id 65a1b2 --format html`,
	RunE: runRender,
}

// resolveCmd prints the resolved display fields of a record
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved display fields of a record as JSON",
	RunE:  runResolve,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOpts.input, "input", "i", "", "record JSON file, - for stdin")
	renderCmd.Flags().StringVar(&renderOpts.id, "id", "", "valuation id to fetch from the backend")
	renderCmd.Flags().StringVarP(&renderOpts.format, "format", "f", "pdf", "output format: pdf or html")
	renderCmd.Flags().StringVarP(&renderOpts.output, "output", "o", "", "output file or directory (default: current directory)")
	renderCmd.MarkFlagsMutuallyExclusive("input", "id")
	renderCmd.MarkFlagsOneRequired("input", "id")

	resolveCmd.Flags().StringP("input", "i", "-", "record JSON file, - for stdin")
}

// initCLI loads config and logs warnings only, so command output stays clean
func initCLI() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Logging
	if logCfg.Level == "info" || logCfg.Level == "debug" {
		logCfg.Level = "warn"
	}
	if err := logger.Init(logCfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readRecord(path string) (record.Record, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return record.Decode(r)
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := exporter.ParseFormat(renderOpts.format)
	if err != nil {
		return err
	}

	cfg, err := initCLI()
	if err != nil {
		return err
	}
	defer logger.Sync()

	dataStore, closeStore := openStore(cfg)
	defer closeStore()

	engine := generation.NewEngine(generation.NewPipeline(cfg), dataStore, backend.NewClient(cfg.Backend.Options()))
	engine.SetNotifier(notification.NewManager(cfg.Notifications))
	defer engine.WaitNotifications()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *exporter.Result
	if renderOpts.id != "" {
		result, err = engine.RunForValuation(ctx, renderOpts.id, format)
	} else {
		rec, readErr := readRecord(renderOpts.input)
		if readErr != nil {
			return fmt.Errorf("failed to read record: %w", readErr)
		}
		result, err = engine.Run(ctx, generation.Job{
			Record: rec,
			Format: format,
			Source: model.GenerationSourceCLI,
		})
	}
	if err != nil {
		return err
	}

	path, err := exporter.WriteFile(result, renderOpts.output)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ %s", path)
	if result.Pages > 0 {
		fmt.Printf(" (%d pages)", result.Pages)
	}
	fmt.Println()
	if result.DroppedImages > 0 {
		color.New(color.FgYellow).Printf("⚠ %d image(s) could not be rendered\n", result.DroppedImages)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	rec, err := readRecord(input)
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	engine := generation.NewEngine(exporter.NewExportManager(), nil, nil)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(engine.Resolve(rec))
}
