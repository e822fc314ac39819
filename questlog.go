// Package questlog keeps a personal game tracking database synchronized
// with external catalogs. It matches each tracked game against the
// catalogs, merges the results under a fixed authority order, and writes
// back only the fields that actually changed, never touching
// user-curated columns.
package questlog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/questlog/questlog/pkg/apply"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
	"github.com/questlog/questlog/pkg/logging"
	"github.com/questlog/questlog/pkg/match"
	"github.com/questlog/questlog/pkg/merge"
	"github.com/questlog/questlog/pkg/reconcile"
)

// Store is the document-store surface the engine needs: load the
// tracking database and write partial record updates.
type Store interface {
	apply.Store

	// QueryRecords loads every record in the tracking database.
	QueryRecords(ctx context.Context) ([]*library.Record, error)
}

// Client is the reconciliation engine entry point.
type Client struct {
	store   Store
	sources []reconcile.Source
	matcher *match.Matcher
	merger  *merge.Merger
	workers int
	logger  *zerolog.Logger

	orchestrator *reconcile.Orchestrator
}

// New assembles a Client from options. A store and at least one catalog
// source are required.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		matcher: match.New(match.DefaultConfig()),
		merger:  merge.New(nil),
		workers: constants.DefaultWorkers,
		logger:  logging.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.store == nil {
		return nil, &errors.ConfigError{Component: "questlog", Message: "a document store is required"}
	}
	if len(c.sources) == 0 {
		return nil, &errors.ConfigError{Component: "questlog", Message: "at least one catalog source is required"}
	}

	c.orchestrator = reconcile.New(c.sources, apply.New(c.store),
		reconcile.WithMatcher(c.matcher),
		reconcile.WithMerger(c.merger),
		reconcile.WithWorkers(c.workers),
	)

	return c, nil
}

// Reconcile loads the tracking database and runs one reconciliation
// pass over every record.
func (c *Client) Reconcile(ctx context.Context) (*reconcile.Result, error) {
	ctx = c.withLogger(ctx)
	ctx, cancel := context.WithTimeout(ctx, constants.PassTimeout)
	defer cancel()

	records, err := c.store.QueryRecords(ctx)
	if err != nil {
		return nil, err
	}
	return c.orchestrator.Run(ctx, records)
}

// ReconcileRecords runs one pass over an already-loaded record set.
func (c *Client) ReconcileRecords(ctx context.Context, records []*library.Record) (*reconcile.Result, error) {
	return c.orchestrator.Run(c.withLogger(ctx), records)
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, c.logger)
}
