// Package merge combines matched catalog candidates with the existing
// database record into a single proposed update.
//
// Sources are consulted per field in a fixed authority order; the first
// source offering a non-empty value wins. Existing record values are
// preserved unless a candidate value is strictly more complete, and
// user-owned fields never appear in the output. Given the same inputs
// the output is always identical: iteration runs over the fixed field
// list, never over map order.
package merge

import (
	"github.com/questlog/questlog/pkg/library"
)

// Merger builds merged updates from per-catalog match results.
type Merger struct {
	authorities AuthorityProvider
}

// New creates a Merger. A nil provider falls back to the default
// authority table.
func New(authorities AuthorityProvider) *Merger {
	if authorities == nil {
		authorities = NewDefaultAuthorities()
	}
	return &Merger{authorities: authorities}
}

// Merge produces the proposed update for one record. matches maps each
// catalog to its selected candidate; catalogs with no match (not found,
// ambiguous, lookup failed) are simply absent and contribute nothing.
// Merge never fails: at worst it returns an empty update.
func (m *Merger) Merge(existing *library.Record, matches map[library.Source]*library.Candidate) library.MergedUpdate {
	update := make(library.MergedUpdate)

	for _, field := range library.Fields() {
		for _, source := range m.authorities.Authorities(field) {
			candidate := matches[source]
			if candidate == nil {
				continue
			}

			value := candidate.Value(field)
			if library.IsEmptyValue(value) {
				continue
			}

			if m.acceptable(existing, field, value) {
				update.Set(field, value, source)
			}

			// First source with a non-empty value settles the field,
			// whether or not it displaced the existing value.
			break
		}
	}

	return update
}

// acceptable decides whether a candidate value may replace the record's
// current value. Empty record fields accept anything; populated fields
// are kept to preserve prior user corrections, unless the new value is a
// strict refinement (a full date over a year-only date).
func (m *Merger) acceptable(existing *library.Record, field library.Field, value any) bool {
	current := existing.Value(field)
	if library.IsEmptyValue(current) {
		return true
	}

	if field == library.FieldReleaseDate {
		newDate, ok := value.(library.Date)
		if !ok {
			return false
		}
		currentDate, ok := current.(library.Date)
		if !ok {
			return false
		}
		return newDate.MoreCompleteThan(currentDate)
	}

	return false
}
