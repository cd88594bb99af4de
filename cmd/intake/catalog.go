package main

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"
	"github.com/spf13/cobra"
	"github.com/studentconnect/intake/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show subjects, pricing and payment details",
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	md := catalogMarkdown(cfg)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

// catalogMarkdown renders the configured catalog as markdown.
func catalogMarkdown(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("# Subjects\n\n")
	b.WriteString("| ID | Subject | Schedule |\n|---|---|---|\n")
	for _, s := range cfg.Catalog().Subjects() {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", s.ID, s.Name, s.Schedule)
	}

	fmt.Fprintf(&b, "\n**Fee per subject:** %s\n", cfg.Pricing.FormatAmount(cfg.Pricing.CostPerSubject))
	if cfg.RequireAssessment {
		b.WriteString("\nAn assessment subject must be chosen before submitting.\n")
	}

	p := cfg.Payment
	b.WriteString("\n# Payment\n\n")
	fmt.Fprintf(&b, "- **Bank:** %s\n", p.Bank)
	fmt.Fprintf(&b, "- **Account holder:** %s\n", p.Holder)
	fmt.Fprintf(&b, "- **Account number:** %s\n", p.AccountNumber)
	fmt.Fprintf(&b, "- **Branch code:** %s\n", p.BranchCode)
	if p.ReferenceNote != "" {
		fmt.Fprintf(&b, "\n> %s\n", p.ReferenceNote)
	}

	if cfg.Venue != "" {
		fmt.Fprintf(&b, "\n# Venue\n\n%s\n", cfg.Venue)
	}
	return b.String()
}
