package main

import (
	"context"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/studentconnect/intake/internal/config"
	"github.com/studentconnect/intake/internal/logger"
)

const logoText = "▀█▀ █▄ █ ▀█▀ ▄▀█ █▄▀ █▀▀\n▄█▄ █ ▀█  █  █▀█ █ █ ██▄"

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootFlags struct {
	dataDir string
}

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Student enrolment intake form for the terminal and for agents",
}

func init() {
	logo := lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7")).Bold(true).Render(logoText)
	rootCmd.Long = logo + `

intake collects a student's personal details, chosen subjects, current and
target marks and a payment date, then shows the cost breakdown and bank
payment details. Completed forms are logged, stored in an embedded NATS
JetStream stream and/or written as markdown receipts.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for NATS storage (default: from config)")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(catalogCmd)
}

// loadConfig loads configuration, applies persistent flag overrides and
// configures the logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = rootFlags.dataDir
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	logger.Debug("Config loaded: data_dir=%s submitters=%v", cfg.DataDir, cfg.Submitters)
	return cfg, nil
}
