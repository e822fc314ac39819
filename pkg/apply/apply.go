// Package apply writes merged updates back to the document store. It
// diffs the proposed update against the record's current values and
// issues at most one partial write per record per pass, retrying only
// transient failures.
package apply

import (
	"context"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
	"github.com/questlog/questlog/pkg/logging"
)

// Store is the document-store write surface consumed by the applier.
// Implementations handle auth and schema details; the applier only sees
// record identifiers and field changes.
type Store interface {
	// UpdateRecord issues one partial update containing exactly the
	// given field changes.
	UpdateRecord(ctx context.Context, recordID string, changes library.MergedUpdate) error
}

// Result reports what one Apply call did.
type Result struct {
	RecordID string

	// Applied is false for no-op results; no write was issued.
	Applied bool

	// Fields lists the written field names in sorted order.
	Fields []library.Field

	// Attempts counts write attempts, zero for no-ops.
	Attempts int
}

// NoChange reports whether the apply was a no-op.
func (r Result) NoChange() bool {
	return !r.Applied
}

// Applier diffs and writes merged updates.
type Applier struct {
	store Store
	retry transport.RetryConfig
}

// New creates an Applier with default retry bounds.
func New(store Store) *Applier {
	return &Applier{store: store, retry: transport.DefaultRetryConfig()}
}

// WithRetry overrides the retry bounds. Useful in tests to shrink
// backoff delays.
func (a *Applier) WithRetry(cfg transport.RetryConfig) *Applier {
	a.retry = cfg
	return a
}

// Apply computes the difference between the proposed update and the
// record's current values, and issues a single partial write when
// anything actually changed. Transient write failures are retried with
// exponential backoff; permanent failures surface immediately as
// *errors.WriteError.
func (a *Applier) Apply(ctx context.Context, record *library.Record, update library.MergedUpdate) (Result, error) {
	result := Result{RecordID: record.ID}

	changes := Diff(record, update)
	if changes.IsEmpty() {
		logging.Ctx(ctx).Debug().
			Str("record_id", record.ID).
			Msg("No changes to apply")
		return result, nil
	}

	attempts := 0
	err := transport.Retry(ctx, a.retry, func() error {
		attempts++
		return a.store.UpdateRecord(ctx, record.ID, changes)
	})
	result.Attempts = attempts

	if err != nil {
		return result, errors.NewWriteError(record.ID, err)
	}

	result.Applied = true
	result.Fields = changes.Fields()

	logging.Ctx(ctx).Info().
		Str("record_id", record.ID).
		Int("fields", len(result.Fields)).
		Int("attempts", attempts).
		Msg("Applied record update")

	return result, nil
}

// Diff returns the subset of the update whose values differ from the
// record's current values. Equal values are dropped so an unchanged
// record produces an empty diff and no write.
func Diff(record *library.Record, update library.MergedUpdate) library.MergedUpdate {
	changes := make(library.MergedUpdate)
	for _, f := range update.Fields() {
		fv := update[f]
		if library.ValuesEqual(record.Value(f), fv.Value) {
			continue
		}
		changes[f] = fv
	}
	return changes
}
