// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthtrack/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and record your health data
through a standardized protocol. The server communicates via stdin/stdout
and acts as the account you are signed in as; sign in with
'healthtrack login' first.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "healthtrack": {
        "command": "healthtrack",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  add_reading      Record health readings
  list_readings    List recent records
  weekly_summary   Weekly averages and changes against reference values
  get_profile      Get your profile
  update_profile   Update profile fields

AVAILABLE RESOURCES:

  health://recent     The 10 most recent records
  health://summary    Weekly summary dashboard with profile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := appState.CurrentUser(); err != nil {
			appState.Log.Warn("mcp server started without a signed-in user; run 'healthtrack login' and restart it")
		}

		server, err := mcp.NewServer(appState)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
