// Package syncer drives the crawler, history store and download scheduler
// together: it decides which dramas need work this run and downloads them
// one at a time.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saputra/dramabox-dl/internal/download"
	"github.com/saputra/dramabox-dl/internal/history"
	"github.com/saputra/dramabox-dl/internal/model"
)

// Catalog lists the full remote catalog.
type Catalog interface {
	CrawlAll(ctx context.Context) ([]*model.Drama, error)
}

// EpisodeSource resolves dramas and their downloadable episodes.
type EpisodeSource interface {
	Lookup(ctx context.Context, bookID string) (*model.Drama, error)
	Episodes(ctx context.Context, drama *model.Drama) ([]*model.Episode, error)
}

// Downloader executes the downloads for one drama.
type Downloader interface {
	DownloadDrama(ctx context.Context, drama *model.Drama, episodes []*model.Episode) (download.Outcome, error)
	EstimateSize(ctx context.Context, episodes []*model.Episode) int64
}

// HistoryStore reads and writes per-drama sync records.
type HistoryStore interface {
	Get(id string) (history.Record, bool)
	Upsert(rec history.Record) error
}

// Stats summarizes one sync run.
type Stats struct {
	Crawled   int
	Queued    int
	UpToDate  int
	Completed int
	Partial   int
	Failed    int
	Duration  time.Duration
}

// Reconciler compares the fresh catalog against the history store and
// downloads only the dramas that are new or have grown.
type Reconciler struct {
	catalog    Catalog
	episodes   EpisodeSource
	downloader Downloader
	store      HistoryStore
	logger     *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(catalog Catalog, episodes EpisodeSource, downloader Downloader, store HistoryStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		catalog:    catalog,
		episodes:   episodes,
		downloader: downloader,
		store:      store,
		logger:     logger.With("component", "sync"),
	}
}

// PlanSync returns the dramas that need work: those with no history record,
// or whose reported chapter count grew past the recorded episode total.
//
// The decision is monotonic. A shrinking chapter count never queues a
// drama, and missing local files are not detected here; that is the
// download scheduler's per-episode job.
func (r *Reconciler) PlanSync(dramas []*model.Drama) []*model.Drama {
	var queue []*model.Drama
	for _, d := range dramas {
		rec, ok := r.store.Get(d.ID)
		if !ok || d.ChapterCount > rec.TotalEpisodes {
			queue = append(queue, d)
		}
	}
	return queue
}

// Run performs a full sync: crawl the catalog, plan the queue and process
// it sequentially, one drama at a time. A failure on one drama only skips
// that drama; the run itself fails only on context cancellation.
func (r *Reconciler) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	dramas, err := r.catalog.CrawlAll(ctx)
	if err != nil {
		r.logger.Warn("crawl incomplete, continuing with partial catalog", "dramas", len(dramas), "error", err)
	}

	queue := r.PlanSync(dramas)
	stats := &Stats{
		Crawled:  len(dramas),
		Queued:   len(queue),
		UpToDate: len(dramas) - len(queue),
	}

	r.logger.Info("sync planned", "crawled", stats.Crawled, "queued", stats.Queued, "up_to_date", stats.UpToDate)

	for i, d := range queue {
		if ctx.Err() != nil {
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		}

		r.logger.Info("processing drama", "position", fmt.Sprintf("%d/%d", i+1, len(queue)), "book_id", d.ID, "title", d.Title)

		if err := r.syncOne(ctx, d); err != nil {
			stats.Failed++
			r.logger.Warn("drama failed, continuing with next", "book_id", d.ID, "error", err)
			continue
		}

		if rec, ok := r.store.Get(d.ID); ok && rec.Status == history.StatusCompleted {
			stats.Completed++
		} else {
			stats.Partial++
		}
	}

	stats.Duration = time.Since(start)
	r.logger.Info("sync finished",
		"completed", stats.Completed,
		"partial", stats.Partial,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	return stats, nil
}

// SyncDrama downloads a single drama by ID, regardless of history.
func (r *Reconciler) SyncDrama(ctx context.Context, bookID string) error {
	drama, err := r.episodes.Lookup(ctx, bookID)
	if err != nil {
		return err
	}
	return r.syncOne(ctx, drama)
}

// SyncEpisode downloads one specific episode of a drama by chapter index.
// No history record is written; this is a repair operation.
func (r *Reconciler) SyncEpisode(ctx context.Context, bookID string, index int) error {
	drama, err := r.episodes.Lookup(ctx, bookID)
	if err != nil {
		return err
	}

	episodes, err := r.episodes.Episodes(ctx, drama)
	if err != nil {
		return err
	}

	for _, ep := range episodes {
		if ep.Index == index {
			outcome, err := r.downloader.DownloadDrama(ctx, drama, []*model.Episode{ep})
			if err != nil {
				return err
			}
			if outcome.Failed > 0 {
				return fmt.Errorf("episode %d of %s failed", index, bookID)
			}
			return nil
		}
	}

	return fmt.Errorf("no episode with index %d in drama %s", index, bookID)
}

// EstimateQueueSize resolves episodes for every queued drama and sums their
// remote sizes. Cancellation aborts remaining probes and returns the
// partial total.
func (r *Reconciler) EstimateQueueSize(ctx context.Context, queue []*model.Drama) int64 {
	var total int64
	for _, d := range queue {
		if ctx.Err() != nil {
			break
		}
		episodes, err := r.episodes.Episodes(ctx, d)
		if err != nil {
			continue
		}
		total += r.downloader.EstimateSize(ctx, episodes)
	}
	return total
}

// syncOne downloads one drama and records the outcome. A drama with zero
// locally complete episodes writes no history record at all, so wasted
// attempts on empty chapter lists never pollute the history.
func (r *Reconciler) syncOne(ctx context.Context, d *model.Drama) error {
	episodes, err := r.episodes.Episodes(ctx, d)
	if err != nil {
		return fmt.Errorf("resolve episodes: %w", err)
	}

	outcome, err := r.downloader.DownloadDrama(ctx, d, episodes)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if outcome.Successes() == 0 {
		return fmt.Errorf("no episodes completed (%d failed)", outcome.Failed)
	}

	status := history.StatusPartial
	if outcome.Complete() {
		status = history.StatusCompleted
	}

	if err := r.store.Upsert(history.Record{
		ID:            d.ID,
		Title:         d.Title,
		TotalEpisodes: outcome.Total,
		Status:        status,
	}); err != nil {
		r.logger.Warn("history write failed", "book_id", d.ID, "error", err)
	}

	return nil
}
