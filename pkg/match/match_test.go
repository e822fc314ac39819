package match

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlog/questlog/pkg/library"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hades", "hades"},
		{"Pokémon Émeraude", "pokemon emeraude"},
		{"NieR: Automata", "nier automata"},
		{"The Witcher 3: Wild Hunt — GOTY", "the witcher 3 wild hunt goty"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "Normalize(%q)", tt.input)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Hades", "HADES"))
	assert.Equal(t, 1.0, Similarity("Wild Hunt: The Witcher 3", "The Witcher 3: Wild Hunt"),
		"token order must not matter")
	assert.Equal(t, 0.0, Similarity("Hades", ""))

	close := Similarity("Hades", "Hades II")
	far := Similarity("Hades", "Stardew Valley")
	assert.Greater(t, close, far)
	assert.Greater(t, close, 0.5)
}

func candidates(pairs ...[2]string) []library.Candidate {
	out := make([]library.Candidate, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, library.Candidate{ID: p[0], Title: p[1]})
	}
	return out
}

func TestMatchSelectsClearWinner(t *testing.T) {
	m := New(DefaultConfig())

	res := m.Match("Hades", Hints{}, candidates(
		[2]string{"hades--1", "Hades"},
		[2]string{"stardew-valley", "Stardew Valley"},
	))

	require.Equal(t, Matched, res.Kind)
	require.NotNil(t, res.Best)
	assert.Equal(t, "hades--1", res.Best.ID)
	assert.Equal(t, 1.0, res.Best.Score)
}

func TestMatchNotFound(t *testing.T) {
	m := New(DefaultConfig())

	res := m.Match("Hades", Hints{}, candidates(
		[2]string{"stardew-valley", "Stardew Valley"},
		[2]string{"celeste", "Celeste"},
	))

	assert.Equal(t, NotFound, res.Kind)
	assert.Nil(t, res.Best)
}

func TestMatchEmptyCandidateList(t *testing.T) {
	m := New(DefaultConfig())
	assert.Equal(t, NotFound, m.Match("Hades", Hints{}, nil).Kind)
}

func TestMatchIdenticalTitlesAlwaysAmbiguous(t *testing.T) {
	m := New(DefaultConfig())

	res := m.Match("Doom", Hints{}, candidates(
		[2]string{"doom--1993", "Doom"},
		[2]string{"doom--2016", "Doom"},
	))

	require.Equal(t, Ambiguous, res.Kind)
	require.Len(t, res.Candidates, 2)
	// Report both identifiers, ordered by id for determinism.
	assert.Equal(t, "doom--1993", res.Candidates[0].ID)
	assert.Equal(t, "doom--2016", res.Candidates[1].ID)
}

func TestMatchWithinMarginIsAmbiguous(t *testing.T) {
	m := New(Config{Floor: 0.5, Margin: 0.2, HintBoost: 0.05, MaxAmbiguous: 5})

	// Both titles score well against the target and within 0.2 of each
	// other, so neither may be auto-picked.
	res := m.Match("Ori and the Blind Forest", Hints{}, candidates(
		[2]string{"ori-blind-forest", "Ori and the Blind Forest"},
		[2]string{"ori-blind-forest-de", "Ori and the Blind Forest DE"},
	))

	assert.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 2)
}

func TestMatchHintBreaksTie(t *testing.T) {
	m := New(Config{Floor: 0.5, Margin: 0.26, HintBoost: 0.05, MaxAmbiguous: 5})

	target := "Ori and the Blind Forest Definitive Edition"
	cands := []library.Candidate{
		{ID: "ori-blind-forest-de", Title: "Ori and the Blind Forest Definitive", ReleaseDate: library.YearOnly(2015)},
		{ID: "ori-blind-forest", Title: "Ori and the Blind Forest", ReleaseDate: library.YearOnly(2018)},
	}

	// Without a hint the two are within the margin.
	plain := m.Match(target, Hints{}, cands)
	require.Equal(t, Ambiguous, plain.Kind)

	// The release-year hint boosts the 2015 title past the margin.
	hinted := m.Match(target, Hints{Year: 2015}, cands)
	require.Equal(t, Matched, hinted.Kind)
	assert.Equal(t, "ori-blind-forest-de", hinted.Best.ID)
}

func TestMatchPlatformHint(t *testing.T) {
	m := New(Config{Floor: 0.9, Margin: 0.03, HintBoost: 0.05, MaxAmbiguous: 5})

	cands := []library.Candidate{
		{ID: "bayonetta--wiiu", Title: "Bayonetta 2", Platforms: []string{"Wii U"}},
		{ID: "bayonetta--switch", Title: "Bayonetta 2 ", Platforms: []string{"Switch"}},
	}

	res := m.Match("Bayonetta 2", Hints{Platform: "Switch"}, cands)
	// Normalized titles are identical, so even a platform hint must not
	// auto-pick between distinct catalog entries.
	assert.Equal(t, Ambiguous, res.Kind)
}

func TestMatchDeterminism(t *testing.T) {
	m := New(DefaultConfig())
	cands := candidates(
		[2]string{"doom--2016", "Doom"},
		[2]string{"doom--1993", "Doom"},
		[2]string{"doom-64", "Doom 64"},
	)

	first := m.Match("Doom", Hints{}, cands)
	for i := 0; i < 10; i++ {
		again := m.Match("Doom", Hints{}, cands)
		require.Equal(t, first.Kind, again.Kind)
		require.Equal(t, len(first.Candidates), len(again.Candidates))
		for j := range first.Candidates {
			assert.Equal(t, first.Candidates[j].ID, again.Candidates[j].ID)
			assert.Equal(t, first.Candidates[j].Score, again.Candidates[j].Score)
		}
	}

	// Input order must not affect the outcome.
	reversed := []library.Candidate{cands[2], cands[1], cands[0]}
	again := m.Match("Doom", Hints{}, reversed)
	require.Equal(t, first.Kind, again.Kind)
	for j := range first.Candidates {
		assert.Equal(t, first.Candidates[j].ID, again.Candidates[j].ID)
	}
}

func TestMatchAmbiguousSetBounded(t *testing.T) {
	m := New(Config{Floor: 0.5, Margin: 0.5, HintBoost: 0.05, MaxAmbiguous: 3})

	res := m.Match("Doom", Hints{}, candidates(
		[2]string{"a", "Doom"},
		[2]string{"b", "Doom"},
		[2]string{"c", "Doom"},
		[2]string{"d", "Doom"},
		[2]string{"e", "Doom"},
	))

	require.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 3)
}

func TestMatchAmbiguousSetUnbounded(t *testing.T) {
	m := New(Config{Floor: 0.5, Margin: 0.5, HintBoost: 0.05, MaxAmbiguous: 0})

	res := m.Match("Doom", Hints{}, candidates(
		[2]string{"a", "Doom"},
		[2]string{"b", "Doom"},
		[2]string{"c", "Doom"},
		[2]string{"d", "Doom"},
		[2]string{"e", "Doom"},
	))

	require.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 5)
}

func TestMatchCandidateAtFloorIsDiscarded(t *testing.T) {
	// A candidate must score strictly above the floor to survive; an
	// exact-title candidate scores 1.0 and is dropped at Floor 1.0.
	m := New(Config{Floor: 1.0, Margin: 0.03, HintBoost: 0.05, MaxAmbiguous: 5})

	res := m.Match("Hades", Hints{}, candidates(
		[2]string{"hades--1", "Hades"},
	))

	assert.Equal(t, NotFound, res.Kind)
}

func TestMatchLeadEqualToMarginIsAmbiguous(t *testing.T) {
	// 0.0625 is exact in binary, so the hint boost produces a lead of
	// exactly the margin here. That lead must not auto-pick.
	m := New(Config{Floor: 0.5, Margin: 0.0625, HintBoost: 0.0625, MaxAmbiguous: 5})

	cands := []library.Candidate{
		{ID: "portal-2", Title: "Portal 2", ReleaseDate: library.YearOnly(2011)},
		{ID: "portal-3", Title: "Portal 3", ReleaseDate: library.YearOnly(2027)},
	}

	// Both titles score identically against the target, so the year
	// hint alone decides the lead.
	res := m.Match("Portal", Hints{Year: 2011}, cands)
	require.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 2)
}

func TestMatchConcurrentCallsAgree(t *testing.T) {
	m := New(DefaultConfig())
	cands := []library.Candidate{
		{ID: "pokemon-emeraude", Title: "Pokémon Émeraude"},
		{ID: "nier-automata", Title: "NieR: Automata"},
		{ID: "okami", Title: "Ōkami"},
	}

	want := m.Match("Pokémon Émeraude", Hints{}, cands)
	require.Equal(t, Matched, want.Kind)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := m.Match("Pokémon Émeraude", Hints{}, cands)
				if got.Kind != want.Kind || got.Best == nil || got.Best.ID != want.Best.ID {
					t.Errorf("concurrent match diverged: got %v", got.Kind)
					return
				}
			}
		}()
	}
	wg.Wait()
}
