package reconcile

import (
	"time"

	"github.com/questlog/questlog/pkg/library"
)

// Stage names a step of the per-record state machine, recorded on
// failure so the report says where a record stopped.
type Stage string

// Per-record stages, in order.
const (
	StageFetch Stage = "fetch"
	StageMatch Stage = "match"
	StageMerge Stage = "merge"
	StageApply Stage = "apply"
)

// Status is the per-record result variant.
type Status int

// Per-record statuses.
const (
	// StatusNoChange means the record was processed and nothing needed
	// to be written. The second pass of an unchanged library reports
	// this for every record.
	StatusNoChange Status = iota

	// StatusDone means at least one field was written.
	StatusDone

	// StatusAmbiguous means at least one catalog returned candidates too
	// close to call; the tied sets are reported for manual resolution.
	// Fields from unambiguous catalogs may still have been applied.
	StatusAmbiguous

	// StatusFailed means the record hit an unrecoverable error. Stage
	// and Err say where and why.
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusAmbiguous:
		return "ambiguous"
	case StatusFailed:
		return "failed"
	default:
		return "no_change"
	}
}

// Outcome reports what happened to one record during a pass.
type Outcome struct {
	RecordID string
	Title    string
	Status   Status

	// Stage and Err are set when Status is StatusFailed.
	Stage Stage
	Err   error

	// AppliedFields lists the fields written, in sorted order.
	AppliedFields []library.Field

	// Ambiguities holds the tied candidate set per catalog that could
	// not auto-pick, keyed by catalog.
	Ambiguities map[library.Source][]library.Candidate

	// LookupErrors holds per-catalog lookup failures that did not fail
	// the record outright.
	LookupErrors map[library.Source]error
}

// Result aggregates a whole reconciliation pass.
type Result struct {
	// PassID uniquely identifies the pass in logs and reports.
	PassID string

	StartedAt time.Time
	Duration  time.Duration

	Outcomes []Outcome

	Done      int
	NoChange  int
	Ambiguous int
	Failed    int
}

// Total returns the number of records processed.
func (r *Result) Total() int {
	return len(r.Outcomes)
}

func (r *Result) count(o Outcome) {
	switch o.Status {
	case StatusDone:
		r.Done++
	case StatusAmbiguous:
		r.Ambiguous++
	case StatusFailed:
		r.Failed++
	default:
		r.NoChange++
	}
}
