package syncer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saputra/dramabox-dl/internal/download"
	"github.com/saputra/dramabox-dl/internal/history"
	"github.com/saputra/dramabox-dl/internal/model"
)

var testPaths = &model.PathConfig{DownloadsPath: "/tmp/dramas"}

func drama(id string, chapters int) *model.Drama {
	return model.NewDrama(id, "Title "+id, chapters, "", testPaths)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeCatalog struct {
	dramas []*model.Drama
	err    error
}

func (f *fakeCatalog) CrawlAll(ctx context.Context) ([]*model.Drama, error) {
	return f.dramas, f.err
}

type fakeEpisodeSource struct {
	episodes map[string][]*model.Episode
	err      error
}

func (f *fakeEpisodeSource) Lookup(ctx context.Context, bookID string) (*model.Drama, error) {
	if f.err != nil {
		return nil, f.err
	}
	return drama(bookID, len(f.episodes[bookID])), nil
}

func (f *fakeEpisodeSource) Episodes(ctx context.Context, d *model.Drama) ([]*model.Episode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.episodes[d.ID], nil
}

type fakeDownloader struct {
	outcomes map[string]download.Outcome
	calls    []string
}

func (f *fakeDownloader) DownloadDrama(ctx context.Context, d *model.Drama, eps []*model.Episode) (download.Outcome, error) {
	f.calls = append(f.calls, d.ID)
	if out, ok := f.outcomes[d.ID]; ok {
		return out, nil
	}
	return download.Outcome{Downloaded: len(eps), Total: len(eps)}, nil
}

func (f *fakeDownloader) EstimateSize(ctx context.Context, eps []*model.Episode) int64 {
	return int64(len(eps)) * 100
}

func newStore(t *testing.T) *history.Store {
	t.Helper()
	return history.Open(t.TempDir() + "/history.json")
}

func episodesFor(d *model.Drama, n int) []*model.Episode {
	eps := make([]*model.Episode, n)
	for i := range eps {
		eps[i] = model.NewEpisode(d, "c"+string(rune('0'+i)), i, "", "https://cdn/x.mp4")
	}
	return eps
}

func TestPlanSync(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Upsert(history.Record{ID: "same", TotalEpisodes: 3, Status: history.StatusCompleted}))
	require.NoError(t, store.Upsert(history.Record{ID: "grown", TotalEpisodes: 3, Status: history.StatusCompleted}))
	require.NoError(t, store.Upsert(history.Record{ID: "shrunk", TotalEpisodes: 10, Status: history.StatusPartial}))

	r := NewReconciler(nil, nil, nil, store, testLogger())

	queue := r.PlanSync([]*model.Drama{
		drama("new", 3),    // absent history always queues
		drama("same", 3),   // equal count, not queued
		drama("grown", 5),  // growth queues
		drama("shrunk", 4), // shrinkage never queues
	})

	var ids []string
	for _, d := range queue {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"new", "grown"}, ids)
}

func TestRun_NewDramaDownloadedAndRecorded(t *testing.T) {
	d := drama("42", 3)
	store := newStore(t)
	dl := &fakeDownloader{}

	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{d}},
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{"42": episodesFor(d, 3)}},
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Queued)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, []string{"42"}, dl.calls, "scheduler driven exactly once")

	rec, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, 3, rec.TotalEpisodes)
	assert.Equal(t, history.StatusCompleted, rec.Status)
}

func TestRun_UpToDateDramaNotQueued(t *testing.T) {
	d := drama("42", 3)
	store := newStore(t)
	require.NoError(t, store.Upsert(history.Record{ID: "42", TotalEpisodes: 3, Status: history.StatusCompleted}))

	dl := &fakeDownloader{}
	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{d}},
		&fakeEpisodeSource{},
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, 1, stats.UpToDate)
	assert.Empty(t, dl.calls, "no downloads for an up-to-date drama")
}

func TestRun_PartialOutcomeRecordedAsPartial(t *testing.T) {
	d := drama("42", 3)
	store := newStore(t)
	dl := &fakeDownloader{outcomes: map[string]download.Outcome{
		"42": {Downloaded: 2, Failed: 1, Total: 3},
	}}

	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{d}},
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{"42": episodesFor(d, 3)}},
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Partial)

	rec, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, history.StatusPartial, rec.Status)
}

func TestRun_ZeroCompletionsWriteNoHistory(t *testing.T) {
	d := drama("42", 3)
	store := newStore(t)
	dl := &fakeDownloader{outcomes: map[string]download.Outcome{
		"42": {Failed: 3, Total: 3},
	}}

	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{d}},
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{"42": episodesFor(d, 3)}},
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, store.Len(), "wasted attempts must not pollute the history")
}

func TestRun_DetailFailureSkipsOnlyThatDrama(t *testing.T) {
	bad := drama("bad", 3)
	good := drama("good", 2)
	store := newStore(t)

	src := &fakeEpisodeSource{episodes: map[string][]*model.Episode{
		"good": episodesFor(good, 2),
	}}
	// "bad" resolves to an empty episode list -> zero completions -> failure.
	dl := &fakeDownloader{}

	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{bad, good}},
		src,
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Completed)
	_, ok := store.Get("good")
	assert.True(t, ok)
}

func TestRun_UsesPartialCrawlResults(t *testing.T) {
	d := drama("42", 3)
	store := newStore(t)
	dl := &fakeDownloader{}

	r := NewReconciler(
		&fakeCatalog{dramas: []*model.Drama{d}, err: errors.New("page 7 unreachable")},
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{"42": episodesFor(d, 3)}},
		dl,
		store,
		testLogger(),
	)

	stats, err := r.Run(context.Background())

	require.NoError(t, err, "a truncated crawl is not fatal to the run")
	assert.Equal(t, 1, stats.Crawled)
	assert.Equal(t, 1, stats.Completed)
}

func TestSyncEpisode_UnknownIndex(t *testing.T) {
	d := drama("42", 1)
	r := NewReconciler(
		nil,
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{"42": episodesFor(d, 1)}},
		&fakeDownloader{},
		newStore(t),
		testLogger(),
	)

	err := r.SyncEpisode(context.Background(), "42", 99)
	assert.Error(t, err)
}

func TestEstimateQueueSize(t *testing.T) {
	a := drama("a", 2)
	b := drama("b", 3)

	r := NewReconciler(
		nil,
		&fakeEpisodeSource{episodes: map[string][]*model.Episode{
			"a": episodesFor(a, 2),
			"b": episodesFor(b, 3),
		}},
		&fakeDownloader{},
		newStore(t),
		testLogger(),
	)

	total := r.EstimateQueueSize(context.Background(), []*model.Drama{a, b})
	assert.Equal(t, int64(500), total)
}
