package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

In stdio mode (default) the server talks MCP over stdin/stdout and the parent
process controls its lifetime. In server mode it serves the streamable HTTP
transport on --host:--port until interrupted.

Examples:
  # Serve over stdio with templates under ./forms
  mcp-pdf-filler serve --work-dir ./forms

  # Serve over HTTP
  mcp-pdf-filler serve --mode server --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// stdout belongs to the MCP protocol
	serveCmd.SetOut(os.Stderr)
	serveCmd.SetErr(os.Stderr)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, svc, err := loadService(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	server, err := mcp.NewServer(cfg, svc, logger)
	if err != nil {
		return err
	}

	logger.Debug("starting", slog.String("config", cfg.String()))
	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		return err
	}
	logger.Info("server stopped")
	return nil
}
