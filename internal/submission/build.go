package submission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/studentconnect/intake/internal/config"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/hooks"
	"github.com/studentconnect/intake/internal/logger"
	"github.com/studentconnect/intake/internal/nats"
	"github.com/studentconnect/intake/internal/receipt"
)

// Pipeline is the configured submitter plus whatever it holds open.
type Pipeline struct {
	Submitter form.Submitter
	Store     *Store  // nil unless the nats submitter is enabled
	SQLite    *SQLite // nil unless the sqlite submitter is enabled

	embedded *nats.Embedded
}

// Close releases the embedded NATS server and the database, if opened.
func (p *Pipeline) Close() error {
	var errs []error
	if p.SQLite != nil {
		errs = append(errs, p.SQLite.Close())
		p.SQLite = nil
	}
	if p.embedded != nil {
		errs = append(errs, p.embedded.Close())
		p.embedded = nil
	}
	return errors.Join(errs...)
}

// NATSDir is where the embedded server keeps its JetStream files.
func NATSDir(dataDir string) string {
	return filepath.Join(dataDir, "nats")
}

// Build assembles the submitters named in cfg.Submitters, in order. Post-submit
// hooks from .intake.hooks.yml in the working directory wrap the result.
func Build(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return BuildIn(ctx, cfg, workDir)
}

// BuildIn is Build with an explicit directory for the hooks file.
func BuildIn(ctx context.Context, cfg *config.Config, workDir string) (*Pipeline, error) {
	p := &Pipeline{}
	var subs Multi

	for _, name := range cfg.Submitters {
		switch name {
		case config.SubmitterLog:
			subs = append(subs, Log{})

		case config.SubmitterNATS:
			if p.embedded == nil {
				emb, err := nats.Open(ctx, NATSDir(cfg.DataDir))
				if err != nil {
					_ = p.Close()
					return nil, err
				}
				p.embedded = emb
				p.Store = NewStore(emb.JS, emb.Stream)
			}
			subs = append(subs, p.Store)

		case config.SubmitterSQLite:
			if p.SQLite == nil {
				db, err := OpenSQLite(ctx, SQLitePath(cfg.DataDir))
				if err != nil {
					_ = p.Close()
					return nil, err
				}
				p.SQLite = db
			}
			subs = append(subs, p.SQLite)

		case config.SubmitterFile:
			subs = append(subs, File{
				Dir: cfg.ReceiptsDir,
				Details: receipt.Details{
					Account: cfg.Payment,
					Venue:   cfg.Venue,
				},
			})

		default:
			_ = p.Close()
			return nil, fmt.Errorf("unknown submitter %q", name)
		}
	}

	if len(subs) == 0 {
		subs = append(subs, Log{})
	}
	if len(subs) == 1 {
		p.Submitter = subs[0]
	} else {
		p.Submitter = subs
	}

	hcfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if hcfg != nil && len(hcfg.Hooks.PostSubmit) > 0 {
		logger.Debug("Wrapping submitter with %d post-submit hooks", len(hcfg.Hooks.PostSubmit))
		p.Submitter = Hooked{Next: p.Submitter, Hooks: hcfg.Hooks.PostSubmit, WorkDir: workDir}
	}
	return p, nil
}

// OpenStore starts the embedded server only to read stored submissions.
func OpenStore(ctx context.Context, dataDir string) (*Pipeline, error) {
	emb, err := nats.Open(ctx, NATSDir(dataDir))
	if err != nil {
		return nil, err
	}
	store := NewStore(emb.JS, emb.Stream)
	return &Pipeline{Submitter: store, Store: store, embedded: emb}, nil
}
