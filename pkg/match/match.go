// Package match ranks catalog candidates against a target title and
// selects the best match, reports ambiguity, or reports no match.
// Fetching candidates is the adapter's job; the matcher only ever sees
// already-normalized candidate lists and never performs I/O.
package match

import (
	"sort"

	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/library"
)

// Config holds the matcher's tuning knobs. The exact threshold values
// are a tuning choice, so they are configuration rather than constants.
type Config struct {
	// Floor discards candidates scoring at or below it; a candidate
	// must exceed the Floor to be considered at all.
	Floor float64

	// Margin is the lead the best candidate must exceed over the
	// runner-up to be selected automatically; a lead equal to the
	// Margin is still ambiguous.
	Margin float64

	// HintBoost is added to a candidate's score for each hint
	// (platform, release year) it agrees with.
	HintBoost float64

	// MaxAmbiguous bounds the candidate set reported for manual
	// disambiguation. Zero or negative leaves the set unbounded.
	MaxAmbiguous int
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		Floor:        constants.MatchFloor,
		Margin:       constants.MatchMargin,
		HintBoost:    constants.HintBoost,
		MaxAmbiguous: constants.MaxAmbiguous,
	}
}

// Hints carry optional record attributes used only to break ties between
// otherwise similar candidates.
type Hints struct {
	Platform string
	Year     int
}

// Kind is the variant of a match result.
type Kind int

// Match result variants.
const (
	// NotFound means no candidate cleared the similarity floor.
	NotFound Kind = iota

	// Matched means exactly one candidate cleared both the floor and
	// the margin over the runner-up.
	Matched

	// Ambiguous means several candidates are too close to call; the
	// tied set is reported for manual resolution.
	Ambiguous
)

// String returns a human-readable variant name.
func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Result is the outcome of matching one record title against one
// catalog's candidate list.
type Result struct {
	Kind Kind

	// Best is the selected candidate when Kind is Matched.
	Best *library.Candidate

	// Candidates is the scored tied set when Kind is Ambiguous, ordered
	// by score descending then id ascending.
	Candidates []library.Candidate
}

// Matcher scores and selects catalog candidates.
type Matcher struct {
	cfg Config
}

// New creates a Matcher with the given configuration. Thresholds are
// used exactly as given, so a Floor of zero really is permissive;
// start from DefaultConfig to override fields selectively.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match ranks candidates against the target title. Candidates at or
// below the floor are discarded; hints boost surviving candidates that
// agree with them; the best survivor is selected only when its lead
// over the runner-up exceeds the margin. Candidates with identical
// normalized titles but different ids are never auto-picked.
func (m *Matcher) Match(target string, hints Hints, candidates []library.Candidate) Result {
	survivors := m.score(target, hints, candidates)
	if len(survivors) == 0 {
		return Result{Kind: NotFound}
	}

	// Deterministic order: score descending, then id ascending so ties
	// never depend on input order.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].Score != survivors[j].Score {
			return survivors[i].Score > survivors[j].Score
		}
		return survivors[i].ID < survivors[j].ID
	})

	if len(survivors) == 1 {
		best := survivors[0]
		return Result{Kind: Matched, Best: &best}
	}

	best, second := survivors[0], survivors[1]

	// Identical titles under different ids (regional re-releases,
	// remasters sharing a name) always need a human decision.
	sameTitle := false
	bestTitle := Normalize(best.Title)
	for _, c := range survivors[1:] {
		if Normalize(c.Title) == bestTitle {
			sameTitle = true
			break
		}
	}
	if sameTitle || best.Score-second.Score <= m.cfg.Margin {
		return Result{Kind: Ambiguous, Candidates: m.tiedSet(survivors)}
	}

	return Result{Kind: Matched, Best: &best}
}

// score computes similarity for each candidate, applies hint boosts, and
// drops candidates at or below the floor.
func (m *Matcher) score(target string, hints Hints, candidates []library.Candidate) []library.Candidate {
	survivors := make([]library.Candidate, 0, len(candidates))
	for _, c := range candidates {
		score := Similarity(target, c.Title)
		if score <= m.cfg.Floor {
			continue
		}

		if hints.Platform != "" && hasPlatform(c.Platforms, hints.Platform) {
			score += m.cfg.HintBoost
		}
		if hints.Year != 0 && c.ReleaseDate.Year == hints.Year {
			score += m.cfg.HintBoost
		}
		if score > 1 {
			score = 1
		}

		c.Score = score
		survivors = append(survivors, c)
	}
	return survivors
}

// tiedSet returns every survivor within the margin of the best score,
// bounded to MaxAmbiguous when one is set.
func (m *Matcher) tiedSet(survivors []library.Candidate) []library.Candidate {
	bound := m.cfg.MaxAmbiguous
	if bound <= 0 {
		bound = len(survivors)
	}

	best := survivors[0].Score
	tied := make([]library.Candidate, 0, bound)
	for _, c := range survivors {
		if best-c.Score > m.cfg.Margin {
			break
		}
		tied = append(tied, c)
		if len(tied) == bound {
			break
		}
	}
	return tied
}

func hasPlatform(platforms []string, want string) bool {
	wantNorm := Normalize(want)
	for _, p := range platforms {
		if Normalize(p) == wantNorm {
			return true
		}
	}
	return false
}
