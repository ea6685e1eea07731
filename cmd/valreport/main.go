// Package main is the entry point for the ValReport application.
// ValReport renders bank valuation records into paginated PDF reports.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/consts"
	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/check"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/internal/database"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/notification"
	"github.com/verustcode/valreport/internal/server"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var (
	configPath string
	envFile    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "valreport",
	Short: "ValReport - bank valuation report generator",
	Long: `ValReport turns valuation records into formatted HTML and paginated A4 PDF
reports, either over an HTTP API or from the command line.`,
	SilenceUsage: true,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ValReport server",
	Long: `Start the HTTP server that renders reports and proxies the valuation records API.

To create a configuration file interactively before starting:
  valreport serve --check`,
	Run: runServe,
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the environment and create a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return check.NewChecker(configPath).Run()
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", consts.ProjectName, Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the ValReport server
func runServe(cmd *cobra.Command, args []string) {
	checker := check.NewChecker(configPath)
	if interactive, _ := cmd.Flags().GetBool("check"); interactive {
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		result := checker.RunNonInteractive()
		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}
		for _, warn := range result.Warnings {
			fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
		}
	}

	consts.SetStartedAt(time.Now())

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting "+consts.ProjectName, zap.String("version", Version))

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer shutdownTelemetry(tel)

	dataStore, closeStore := openStore(cfg)
	defer closeStore()

	engine := generation.NewEngine(generation.NewPipeline(cfg), dataStore, backend.NewClient(cfg.Backend.Options()))
	engine.SetNotifier(notification.NewManager(cfg.Notifications))
	defer engine.WaitNotifications()

	srv := server.New(cfg, engine, dataStore)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info(consts.ProjectName+" server is running",
		zap.String("address", cfg.Server.Address()),
	)
	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d/health", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d/health", lanIP, port))
	}

	srv.WaitForShutdown()

	logger.Info(consts.ProjectName + " stopped")
}

// loadConfig loads the dotenv file and then the YAML configuration
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := config.LoadEnvFiles(envFile); err != nil {
			return nil, err
		}
	}
	if configPath == "" {
		configPath = config.DefaultPath
	}
	return config.LoadOrDefault(configPath)
}

// openStore opens the generation history database. A failure disables
// history instead of stopping the process.
func openStore(cfg *config.Config) (store.Store, func()) {
	if !cfg.History.Enabled {
		return nil, func() {}
	}
	if err := database.InitWithPath(cfg.Database.Path); err != nil {
		logger.Warn("Failed to open history database, generation history disabled",
			zap.String("path", cfg.Database.Path),
			zap.Error(err),
		)
		return nil, func() {}
	}
	return store.NewStore(database.Get()), func() {
		if err := database.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}
}

func shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown telemetry", zap.Error(err))
	}
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
