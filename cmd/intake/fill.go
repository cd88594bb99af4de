package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studentconnect/intake/internal/config"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/receipt"
	"github.com/studentconnect/intake/internal/submission"
	"github.com/studentconnect/intake/internal/tui/wizard"
)

var fillFlags struct {
	submitters        []string
	requireAssessment bool
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill in the intake form",
	Long: `Run the four-step intake wizard: personal info, subjects, marks, and
review & payment. On submit the form is handed to the configured submitters
and the acknowledgement is printed.`,
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringSliceVarP(&fillFlags.submitters, "submitter", "s", nil, "Submitters to use: log, nats, file, sqlite (default: from config)")
	fillCmd.Flags().BoolVar(&fillFlags.requireAssessment, "require-assessment", false, "Require an assessment subject before submitting")
}

// applyFormFlags overrides config values with flags shared by fill and mcp.
func applyFormFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("submitter") {
		cfg.Submitters = fillFlags.submitters
	}
	if cmd.Flags().Changed("require-assessment") {
		cfg.RequireAssessment = fillFlags.requireAssessment
	}
	return cfg.Validate()
}

// newController builds a controller from configuration.
func newController(cfg *config.Config, s form.Submitter) *form.Controller {
	return form.NewController(cfg.Catalog(),
		form.WithSubmitter(s),
		form.WithPricing(cfg.Pricing),
		form.WithRequiredAssessment(cfg.RequireAssessment),
	)
}

func receiptDetails(cfg *config.Config) receipt.Details {
	return receipt.Details{Account: cfg.Payment, Venue: cfg.Venue}
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFormFlags(cmd, cfg); err != nil {
		return err
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

	ctrl := newController(cfg, pipeline.Submitter)
	result, err := wizard.RunWizard(ctx, ctrl, receiptDetails(cfg))
	if errors.Is(err, wizard.ErrCancelled) {
		fmt.Println("Cancelled, nothing was submitted.")
		return nil
	}
	if err != nil {
		return err
	}

	review := form.Derive(result.State, ctrl.Catalog(), ctrl.Pricing())
	fmt.Printf("Submitted %s\n", result.Ack.ID)
	fmt.Printf("  Payment reference: %s\n", review.PaymentReference)
	fmt.Printf("  Amount due:        %s\n", review.TotalDisplay)
	if review.PaymentDateDisplay != "" {
		fmt.Printf("  Pay by:            %s\n", review.PaymentDateDisplay)
	}
	if result.Ack.Location != "" {
		fmt.Printf("  Stored at:         %s\n", result.Ack.Location)
	}
	return nil
}
