package questlog

import (
	"github.com/rs/zerolog"

	"github.com/questlog/questlog/pkg/match"
	"github.com/questlog/questlog/pkg/merge"
	"github.com/questlog/questlog/pkg/reconcile"
)

// Option configures a Client.
type Option func(*Client) error

// WithStore sets the document store holding the tracking database.
// Required.
func WithStore(store Store) Option {
	return func(c *Client) error {
		c.store = store
		return nil
	}
}

// WithSources sets the catalog adapters consulted during a pass. At
// least one is required.
func WithSources(sources ...reconcile.Source) Option {
	return func(c *Client) error {
		c.sources = append(c.sources, sources...)
		return nil
	}
}

// WithMatcherConfig overrides the matcher thresholds.
func WithMatcherConfig(cfg match.Config) Option {
	return func(c *Client) error {
		c.matcher = match.New(cfg)
		return nil
	}
}

// WithMerger overrides the default authority-table merger.
func WithMerger(m *merge.Merger) Option {
	return func(c *Client) error {
		c.merger = m
		return nil
	}
}

// WithWorkers bounds concurrent record processing.
func WithWorkers(n int) Option {
	return func(c *Client) error {
		c.workers = n
		return nil
	}
}

// WithLogger sets the logger used for pass reporting.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}
