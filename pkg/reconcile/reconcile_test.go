package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questlog/questlog/internal/transport"
	"github.com/questlog/questlog/pkg/apply"
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
)

// fakeSource serves a fixed candidate list, optionally failing the
// first N calls.
type fakeSource struct {
	name       library.Source
	candidates []library.Candidate
	err        error
	failures   int

	mu    sync.Mutex
	calls int
}

func (s *fakeSource) Name() library.Source { return s.name }

func (s *fakeSource) Search(_ context.Context, _ string) ([]library.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, s.err
	}
	return s.candidates, nil
}

// fakeStore records writes, optionally failing for one record id.
type fakeStore struct {
	mu     sync.Mutex
	writes map[string]library.MergedUpdate
	failID string
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{writes: make(map[string]library.MergedUpdate)}
}

func (s *fakeStore) UpdateRecord(_ context.Context, recordID string, changes library.MergedUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recordID == s.failID {
		return s.err
	}
	s.writes[recordID] = changes
	return nil
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func fastRetry() transport.RetryConfig {
	return transport.RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	}
}

func newOrchestrator(sources []Source, store *fakeStore, opts ...Option) *Orchestrator {
	applier := apply.New(store).WithRetry(fastRetry())
	opts = append(opts, WithLookupRetry(fastRetry()))
	return New(sources, applier, opts...)
}

// applyChanges folds a written update back into the record, simulating
// the store state a later pass would read.
func applyChanges(r *library.Record, changes library.MergedUpdate) {
	for field, fv := range changes {
		switch field {
		case library.FieldPlatforms:
			r.Platforms = fv.Value.([]string)
		case library.FieldGenres:
			r.Genres = fv.Value.([]string)
		case library.FieldReleaseDate:
			r.ReleaseDate = fv.Value.(library.Date)
		case library.FieldCoverURL:
			r.CoverURL = fv.Value.(string)
		case library.FieldCriticRating:
			r.CriticRating = fv.Value.(float64)
		case library.FieldIGDBID:
			r.IGDBID = fv.Value.(string)
		case library.FieldIGDBURL:
			r.IGDBURL = fv.Value.(string)
		case library.FieldHLTBID:
			r.HLTBID = fv.Value.(string)
		case library.FieldHLTBURL:
			r.HLTBURL = fv.Value.(string)
		case library.FieldMainStoryHours:
			r.MainStoryHours = fv.Value.(float64)
		case library.FieldMainExtraHours:
			r.MainExtraHours = fv.Value.(float64)
		case library.FieldCompletionistHours:
			r.CompletionistHours = fv.Value.(float64)
		case library.FieldReviewScore:
			r.ReviewScore = fv.Value.(float64)
		}
	}
}

func hadesSources() []Source {
	igdb := &fakeSource{
		name: library.SourceIGDB,
		candidates: []library.Candidate{
			{
				ID:           "hades--1",
				Title:        "Hades",
				Platforms:    []string{"PC", "Switch"},
				Genres:       []string{"Roguelike"},
				ReleaseDate:  library.NewDate(2020, 9, 17),
				CoverURL:     "https://images.igdb.com/t_cover_big_2x/hades.jpg",
				CriticRating: 93,
				URL:          "https://www.igdb.com/games/hades--1",
			},
		},
	}
	hltb := &fakeSource{
		name: library.SourceHLTB,
		candidates: []library.Candidate{
			{
				ID:             "63215",
				Title:          "Hades",
				URL:            "https://howlongtobeat.com/game/63215",
				MainStoryHours: 22,
				ReviewScore:    92,
			},
		},
	}
	return []Source{igdb, hltb}
}

func TestRunEnrichesEmptyRecord(t *testing.T) {
	store := newFakeStore()
	orch := newOrchestrator(hadesSources(), store)

	records := []*library.Record{{ID: "rec-hades", Title: "Hades"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	outcome := result.Outcomes[0]
	assert.Equal(t, StatusDone, outcome.Status)
	assert.Equal(t, 1, result.Done)
	assert.NotEmpty(t, result.PassID)

	require.Contains(t, store.writes, "rec-hades")
	written := store.writes["rec-hades"]
	assert.Equal(t, []string{"PC", "Switch"}, written[library.FieldPlatforms].Value)
	assert.Equal(t, library.SourceIGDB, written[library.FieldPlatforms].Source)
	assert.Equal(t, 22.0, written[library.FieldMainStoryHours].Value)
	assert.Equal(t, library.SourceHLTB, written[library.FieldMainStoryHours].Source)
}

func TestRunSecondPassIsNoChange(t *testing.T) {
	store := newFakeStore()
	orch := newOrchestrator(hadesSources(), store)

	records := []*library.Record{{ID: "rec-hades", Title: "Hades"}}
	first, err := orch.Run(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 1, first.Done)

	applyChanges(records[0], store.writes["rec-hades"])

	second, err := orch.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, second.NoChange)
	assert.Equal(t, 0, second.Done)
	assert.Equal(t, 1, store.writeCount(), "second pass must not write")
}

func TestRunRetriesTransientLookup(t *testing.T) {
	sources := hadesSources()
	flaky := sources[1].(*fakeSource)
	flaky.failures = 2
	flaky.err = errors.ErrRateLimited

	store := newFakeStore()
	orch := newOrchestrator(sources, store)

	records := []*library.Record{{ID: "rec-hades", Title: "Hades"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	outcome := result.Outcomes[0]
	assert.Equal(t, StatusDone, outcome.Status)
	assert.Empty(t, outcome.LookupErrors)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, 22.0, store.writes["rec-hades"][library.FieldMainStoryHours].Value)
}

func TestRunAmbiguousTitlesReportedWithoutWrite(t *testing.T) {
	igdb := &fakeSource{
		name: library.SourceIGDB,
		candidates: []library.Candidate{
			{ID: "doom", Title: "Doom", ReleaseDate: library.YearOnly(1993)},
			{ID: "doom--1", Title: "Doom", ReleaseDate: library.YearOnly(2016)},
		},
	}
	hltb := &fakeSource{name: library.SourceHLTB}

	store := newFakeStore()
	orch := newOrchestrator([]Source{igdb, hltb}, store)

	records := []*library.Record{{ID: "rec-doom", Title: "Doom"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	outcome := result.Outcomes[0]
	assert.Equal(t, StatusAmbiguous, outcome.Status)
	require.Contains(t, outcome.Ambiguities, library.SourceIGDB)

	tied := outcome.Ambiguities[library.SourceIGDB]
	require.Len(t, tied, 2)
	assert.Equal(t, "doom", tied[0].ID)
	assert.Equal(t, "doom--1", tied[1].ID)

	assert.Zero(t, store.writeCount(), "ambiguous match must not be written")
	assert.Equal(t, 1, result.Ambiguous)
}

func TestRunPartialCatalogFailureDowngradesContribution(t *testing.T) {
	sources := hadesSources()
	broken := sources[1].(*fakeSource)
	broken.failures = 100
	broken.err = errors.ErrPermissionDenied

	store := newFakeStore()
	orch := newOrchestrator(sources, store)

	records := []*library.Record{{ID: "rec-hades", Title: "Hades"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	outcome := result.Outcomes[0]
	assert.Equal(t, StatusDone, outcome.Status)
	require.Contains(t, outcome.LookupErrors, library.SourceHLTB)

	var lookupErr *errors.LookupError
	assert.ErrorAs(t, outcome.LookupErrors[library.SourceHLTB], &lookupErr)

	written := store.writes["rec-hades"]
	assert.Contains(t, written, library.FieldPlatforms)
	assert.NotContains(t, written, library.FieldMainStoryHours,
		"failed catalog must contribute nothing")
}

func TestRunAllCatalogsFailedMarksRecordFailed(t *testing.T) {
	down := func(name library.Source) *fakeSource {
		return &fakeSource{name: name, failures: 100, err: errors.ErrUnavailable}
	}

	store := newFakeStore()
	orch := newOrchestrator([]Source{down(library.SourceIGDB), down(library.SourceHLTB)}, store)

	records := []*library.Record{{ID: "rec-1", Title: "Celeste"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	outcome := result.Outcomes[0]
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, StageMatch, outcome.Stage)
	assert.Error(t, outcome.Err)
	assert.Zero(t, store.writeCount())
}

func TestRunFailureIsContainedPerRecord(t *testing.T) {
	store := newFakeStore()
	store.failID = "rec-bad"
	store.err = errors.ErrPermissionDenied

	orch := newOrchestrator(hadesSources(), store)

	records := []*library.Record{
		{ID: "rec-bad", Title: "Hades"},
		{ID: "rec-good", Title: "Hades"},
	}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusFailed, result.Outcomes[0].Status)
	assert.Equal(t, StageApply, result.Outcomes[0].Stage)
	assert.Equal(t, StatusDone, result.Outcomes[1].Status)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Done)
}

func TestRunNotFoundIsNoChange(t *testing.T) {
	empty := []Source{
		&fakeSource{name: library.SourceIGDB},
		&fakeSource{name: library.SourceHLTB},
	}
	store := newFakeStore()
	orch := newOrchestrator(empty, store)

	records := []*library.Record{{ID: "rec-1", Title: "Some Unknown Game"}}
	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, StatusNoChange, result.Outcomes[0].Status)
	assert.Zero(t, store.writeCount())
}

func TestRunCanceledContextFailsRemainingRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newFakeStore()
	orch := newOrchestrator(hadesSources(), store)

	records := []*library.Record{
		{ID: "rec-1", Title: "Hades"},
		{ID: "rec-2", Title: "Hades"},
	}
	result, err := orch.Run(ctx, records)
	require.NoError(t, err)

	for _, outcome := range result.Outcomes {
		assert.Equal(t, StatusFailed, outcome.Status)
		assert.Equal(t, StageFetch, outcome.Stage)
		assert.ErrorIs(t, outcome.Err, errors.ErrCanceled)
	}
	assert.Zero(t, store.writeCount())
}

func TestRunManyRecordsBoundedWorkers(t *testing.T) {
	store := newFakeStore()
	orch := newOrchestrator(hadesSources(), store, WithWorkers(2))

	records := make([]*library.Record, 10)
	for i := range records {
		records[i] = &library.Record{ID: "rec-" + string(rune('a'+i)), Title: "Hades"}
	}

	result, err := orch.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Done)
	assert.Equal(t, 10, result.Total())
	assert.Equal(t, 10, store.writeCount())
}
