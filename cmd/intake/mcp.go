package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studentconnect/intake/internal/mcpserver"
	"github.com/studentconnect/intake/internal/submission"
)

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the intake form as MCP tools",
	Long: `Start an MCP server (streamable HTTP) exposing one intake session as
tools: form-state, set-field, toggle-subject, set-mark, set-payment-date,
set-assessment-subject, next-step, previous-step and submit.

The server runs until interrupted.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVar(&mcpFlags.port, "port", 0, "Port to listen on (0 = random)")
	mcpCmd.Flags().StringSliceVarP(&fillFlags.submitters, "submitter", "s", nil, "Submitters to use: log, nats, file, sqlite (default: from config)")
	mcpCmd.Flags().BoolVar(&fillFlags.requireAssessment, "require-assessment", false, "Require an assessment subject before submitting")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFormFlags(cmd, cfg); err != nil {
		return err
	}
	if mcpFlags.port < 0 || mcpFlags.port > 65535 {
		return fmt.Errorf("invalid port %d", mcpFlags.port)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := submission.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up submitters: %w", err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	srv := mcpserver.New(newController(cfg, pipeline.Submitter), receiptDetails(cfg))
	if _, err := srv.Start(ctx, mcpFlags.port); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	defer func() { _ = srv.Stop() }()

	fmt.Printf("MCP server listening at %s\n", srv.URL())
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")
	return nil
}
