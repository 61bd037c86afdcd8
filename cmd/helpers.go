package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opennotesproject/notevault/internal/config"
	"github.com/opennotesproject/notevault/internal/db"
	"github.com/opennotesproject/notevault/internal/progress"
	"github.com/opennotesproject/notevault/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `notevault init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w\nRun `notevault init` to fix it", cfgFile, err)
	}
	return cfg, nil
}

// openSession loads the config, opens the recent-notes database and wires a
// session. The caller closes the returned database.
func openSession(ctx context.Context, reporter progress.Reporter) (*config.Config, *session.Session, *db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.OpenDir(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	sess, err := session.FromConfig(ctx, cfg, database, reporter, slog.Default())
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}
	return cfg, sess, database, nil
}

// loadVault opens a session and builds its tree and index, showing progress
// on stderr.
func loadVault(ctx context.Context) (*config.Config, *session.Session, *db.DB, error) {
	cfg, sess, database, err := openSession(ctx, progress.NewReporter("Indexing notes"))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := sess.Init(ctx); err != nil {
		database.Close()
		return nil, nil, nil, err
	}
	return cfg, sess, database, nil
}
