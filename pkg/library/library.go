// Package library defines the data model shared across the questlog
// reconciliation pipeline: the user's tracked-game records, the candidate
// records returned by external catalogs, and the merged updates flowing
// between them.
//
// The document store (Notion) is the only source of truth for records.
// Candidates are ephemeral: they exist only within one reconciliation
// pass and are never persisted.
package library

// Source identifies where a field value came from.
type Source string

// Known sources, in no particular order. Merge priority is defined by
// the merge package's authority table, not by these constants.
const (
	// SourceIGDB is the game-information catalog (titles, platforms,
	// genres, release dates, cover art, ratings).
	SourceIGDB Source = "igdb"

	// SourceHLTB is the completion-time catalog (HowLongToBeat).
	SourceHLTB Source = "hltb"

	// SourceLibrary is the user's own database record.
	SourceLibrary Source = "library"
)

// String returns the string representation of a source.
func (s Source) String() string {
	return string(s)
}
