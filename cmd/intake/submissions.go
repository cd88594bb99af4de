package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studentconnect/intake/internal/config"
	"github.com/studentconnect/intake/internal/submission"
)

var submissionsFlags struct {
	json   bool
	source string
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List stored submissions",
	Long: `List every submission stored by the nats or sqlite submitter, oldest
first. Both stores live under the configured data directory.`,
	RunE: runSubmissions,
}

func init() {
	submissionsCmd.Flags().BoolVar(&submissionsFlags.json, "json", false, "Print submissions as JSON")
	submissionsCmd.Flags().StringVar(&submissionsFlags.source, "source", config.SubmitterNATS, "Store to read: nats or sqlite")
}

// listSubmissions reads records from the chosen store.
func listSubmissions(ctx context.Context, source, dataDir string) ([]submission.Record, error) {
	switch source {
	case config.SubmitterNATS:
		pipeline, err := submission.OpenStore(ctx, dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open submission store: %w", err)
		}
		defer func() { _ = pipeline.Close() }()
		return pipeline.Store.List(ctx)

	case config.SubmitterSQLite:
		db, err := submission.OpenSQLite(ctx, submission.SQLitePath(dataDir))
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return db.List(ctx)

	default:
		return nil, fmt.Errorf("unknown source %q (use nats or sqlite)", source)
	}
}

func runSubmissions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	records, err := listSubmissions(cmd.Context(), submissionsFlags.source, cfg.DataDir)
	if err != nil {
		return err
	}

	if submissionsFlags.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No submissions stored.")
		return nil
	}

	fmt.Printf("%-5s %-17s %-24s %-12s %-12s %s\n", "SEQ", "SUBMITTED", "REFERENCE", "TOTAL", "PAY BY", "SUBJECTS")
	for _, r := range records {
		sub := r.Submission
		fmt.Printf("%-5d %-17s %-24s %-12s %-12s %s\n",
			r.Sequence,
			sub.SubmittedAt.Local().Format("2006-01-02 15:04"),
			truncate(sub.Review.PaymentReference, 24),
			sub.Review.TotalDisplay,
			sub.State.PaymentDate,
			strings.Join(sub.State.Subjects, ", "),
		)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
