// Package common builds the dependencies shared by every subcommand.
package common

import (
	"fmt"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/pipeline"
	"github.com/jonesrussell/godigest/internal/store"
)

// Deps bundles the long-lived dependencies a command needs.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
	Store  *store.Store
}

// Build loads configuration, constructs the logger, and opens the
// database. Callers must Close.
func Build() (*Deps, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	return &Deps{Config: cfg, Logger: log, Store: st}, nil
}

// Close releases the dependencies.
func (d *Deps) Close() {
	if err := d.Store.Close(); err != nil {
		d.Logger.Warn("closing database failed", logger.Error(err))
	}
	_ = d.Logger.Sync()
}

// Pipeline constructs the digest pipeline on top of the shared deps.
func (d *Deps) Pipeline() (*pipeline.Pipeline, error) {
	sender := email.NewSender(d.Config, d.Logger)
	return pipeline.New(d.Config, d.Store, sender, d.Logger)
}
