// ABOUTME: Root Cobra command for healthtrack CLI.
// ABOUTME: Opens the app and restores the session via PersistentPre/PostRunE.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthtrack/internal/app"
	"github.com/harperreed/healthtrack/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	appState *app.App
	logLevel string

	// openApp is replaced in tests.
	openApp = app.Open
)

// offline commands never touch the backend.
var offline = map[string]bool{
	"help":          true,
	"version":       true,
	"demo":          true,
	"install-skill": true,
	"completion":    true,
}

var rootCmd = &cobra.Command{
	Use:   "healthtrack",
	Short: "Personal health metrics tracker",
	Long: `Healthtrack records personal health readings and summarizes your week.

WHAT IT TRACKS:

  heart_rate                 bpm
  blood_pressure             systolic/diastolic, mmHg
  blood_glucose              mg/dL
  weight                     kg
  steps                      daily count
  sleep_hours                hours

QUICK START:

  $ healthtrack register you@example.com      # Create an account
  $ healthtrack add --weight 71.4 --bp 118/76 # Log readings
  $ healthtrack list                          # See recent records
  $ healthtrack summary                       # Weekly averages and changes
  $ healthtrack demo                          # Preview a month of sample data

MCP INTEGRATION:

  Run 'healthtrack mcp' to start the Model Context Protocol server for use
  with Claude Desktop or other MCP-compatible AI assistants:

  {
    "mcpServers": {
      "healthtrack": { "command": "healthtrack", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings live in ~/.config/healthtrack/config.json and can be overridden
  with HEALTHTRACK_* environment variables or a .env file in the working
  directory. Data is stored in ~/.local/share/healthtrack by default.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if offline[cmd.Name()] {
			return nil
		}

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		appState, err = openApp(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		appState.Start(cmd.Context())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// closeApp releases the app opened for the current command. PostRun is
// skipped when a command fails, so main calls this too.
func closeApp() error {
	if appState == nil {
		return nil
	}
	err := appState.Close()
	appState = nil
	return err
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	lvl, err := cfg.GetLogLevel()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "healthtrack",
		ReportTimestamp: lvl == log.DebugLevel,
	}), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
