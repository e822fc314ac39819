// Package reconcile orchestrates a reconciliation pass: for each
// library record it fans catalog lookups out concurrently, matches,
// merges, and applies, then aggregates per-record outcomes into a pass
// result. One record's failure never aborts the pass.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/apply"
	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
	"github.com/questlog/questlog/pkg/logging"
	"github.com/questlog/questlog/pkg/match"
	"github.com/questlog/questlog/pkg/merge"
)

// Source is a catalog adapter: it queries one external catalog by title
// and returns normalized candidates. Adapters own auth, pagination, and
// response decoding; the orchestrator only sees candidates and errors.
type Source interface {
	// Name identifies the catalog for merging and reporting.
	Name() library.Source

	// Search returns the catalog's candidates for a title. An empty
	// slice with a nil error means the catalog knows no such game.
	Search(ctx context.Context, title string) ([]library.Candidate, error)
}

// Orchestrator runs reconciliation passes.
type Orchestrator struct {
	sources []Source
	matcher *match.Matcher
	merger  *merge.Merger
	applier *apply.Applier
	workers int
	retry   transport.RetryConfig
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds the number of records processed concurrently.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMatcher overrides the default matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(o *Orchestrator) { o.matcher = m }
}

// WithMerger overrides the default merger.
func WithMerger(m *merge.Merger) Option {
	return func(o *Orchestrator) { o.merger = m }
}

// WithLookupRetry overrides the retry bounds for catalog lookups.
func WithLookupRetry(cfg transport.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// New creates an Orchestrator over the given catalogs and store-backed
// applier.
func New(sources []Source, applier *apply.Applier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sources: sources,
		matcher: match.New(match.DefaultConfig()),
		merger:  merge.New(nil),
		applier: applier,
		workers: constants.DefaultWorkers,
		retry:   transport.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run reconciles every record and returns the aggregated pass result.
// Records are processed by a bounded worker pool with no ordering
// guarantees; outcomes are reported in input order.
func (o *Orchestrator) Run(ctx context.Context, records []*library.Record) (*Result, error) {
	result := &Result{
		PassID:    uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, len(records)),
	}

	logger := logging.Ctx(ctx).With().Str("pass_id", result.PassID).Logger()
	ctx = logging.WithLogger(ctx, &logger)
	logger.Info().Int("records", len(records)).Msg("Starting reconciliation pass")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.workers)

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			// Pass canceled between records: remaining records fail at
			// the fetch stage, already-dispatched ones run to completion.
			result.Outcomes[i] = Outcome{
				RecordID: record.ID,
				Title:    record.Title,
				Status:   StatusFailed,
				Stage:    StageFetch,
				Err:      errors.ErrCanceled,
			}
			continue
		}

		wg.Add(1)
		go func(i int, record *library.Record) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result.Outcomes[i] = o.reconcileRecord(ctx, record)
		}(i, record)
	}
	wg.Wait()

	for _, outcome := range result.Outcomes {
		result.count(outcome)
	}
	result.Duration = time.Since(result.StartedAt)

	logger.Info().
		Int("done", result.Done).
		Int("no_change", result.NoChange).
		Int("ambiguous", result.Ambiguous).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Reconciliation pass complete")

	return result, nil
}

// lookupResult joins one catalog's match back to the record's worker.
type lookupResult struct {
	source library.Source
	match  match.Result
	err    error
}

// reconcileRecord walks one record through the state machine: concurrent
// catalog lookups, match, merge, apply.
func (o *Orchestrator) reconcileRecord(ctx context.Context, record *library.Record) Outcome {
	ctx, cancel := context.WithTimeout(ctx, constants.RecordTimeout)
	defer cancel()
	ctx = logging.WithRecord(ctx, record.ID)

	outcome := Outcome{RecordID: record.ID, Title: record.Title}
	hints := recordHints(record)

	// All catalog lookups run concurrently and are joined before
	// merging. A failed catalog only drops its own contribution.
	results := make(chan lookupResult, len(o.sources))
	var wg sync.WaitGroup
	for _, source := range o.sources {
		wg.Add(1)
		go func(source Source) {
			defer wg.Done()
			results <- o.lookup(ctx, source, record.Title, hints)
		}(source)
	}
	wg.Wait()
	close(results)

	matches := make(map[library.Source]*library.Candidate)
	lookupsFailed := 0
	for res := range results {
		switch {
		case res.err != nil:
			lookupsFailed++
			if outcome.LookupErrors == nil {
				outcome.LookupErrors = make(map[library.Source]error)
			}
			outcome.LookupErrors[res.source] = res.err
			logging.Ctx(ctx).Warn().
				Str("catalog", string(res.source)).
				Err(res.err).
				Msg("Catalog lookup failed")
		case res.match.Kind == match.Matched:
			matches[res.source] = res.match.Best
		case res.match.Kind == match.Ambiguous:
			if outcome.Ambiguities == nil {
				outcome.Ambiguities = make(map[library.Source][]library.Candidate)
			}
			outcome.Ambiguities[res.source] = res.match.Candidates
		}
	}

	if len(o.sources) > 0 && lookupsFailed == len(o.sources) {
		outcome.Status = StatusFailed
		outcome.Stage = StageMatch
		outcome.Err = fmt.Errorf("all %d catalog lookups failed", lookupsFailed)
		return outcome
	}

	// Merge never fails; at worst the update is empty and the apply is
	// a no-op.
	update := o.merger.Merge(record, matches)

	applied, err := o.applier.Apply(ctx, record, update)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Stage = StageApply
		outcome.Err = err
		return outcome
	}
	outcome.AppliedFields = applied.Fields

	switch {
	case len(outcome.Ambiguities) > 0:
		outcome.Status = StatusAmbiguous
	case applied.Applied:
		outcome.Status = StatusDone
	default:
		outcome.Status = StatusNoChange
	}
	return outcome
}

// lookup queries one catalog, retrying transient failures, and matches
// the returned candidates against the record title.
func (o *Orchestrator) lookup(ctx context.Context, source Source, title string, hints match.Hints) lookupResult {
	res := lookupResult{source: source.Name()}

	var candidates []library.Candidate
	err := transport.Retry(ctx, o.retry, func() error {
		var searchErr error
		candidates, searchErr = source.Search(ctx, title)
		return searchErr
	})
	if err != nil {
		res.err = &errors.LookupError{Catalog: string(source.Name()), Title: title, Err: err}
		return res
	}

	res.match = o.matcher.Match(title, hints, candidates)
	return res
}

// recordHints derives tie-breaking hints from what the record already
// knows about itself.
func recordHints(record *library.Record) match.Hints {
	hints := match.Hints{Year: record.ReleaseDate.Year}
	if len(record.Platforms) > 0 {
		hints.Platform = record.Platforms[0]
	}
	return hints
}
