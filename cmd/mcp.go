package cmd

import (
	"os/signal"

	"github.com/spf13/cobra"

	mcpserver "github.com/joescharf/fitmin/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio so an assistant
can read fitmin stats and talk to the coach. Configure it with:

  {
    "mcpServers": {
      "fitmin": { "command": "fitmin", "args": ["mcp"] }
    }
  }

Available tools: fitmin_stats, fitmin_list_exercises,
fitmin_daily_exercise, fitmin_ask_coach`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := getCatalog()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()

		srv := mcpserver.NewServer(cat, loadStats(ctx), newTranscript(ctx), buildVersion)
		return srv.ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
