package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/saputra/dramabox-dl/internal/http"
	ioutils "github.com/saputra/dramabox-dl/internal/io"
	"github.com/saputra/dramabox-dl/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update. Done and Total are
// set on per-episode completion events and zero elsewhere.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Done    int
	Total   int
}

// EpisodeStatus classifies the outcome of one episode download attempt.
type EpisodeStatus int

const (
	// EpisodeDownloaded means the full body was transferred to disk.
	EpisodeDownloaded EpisodeStatus = iota

	// EpisodeSkipped means a local file already matched the remote size;
	// no network transfer happened.
	EpisodeSkipped

	// EpisodeFailed means the transfer was attempted and failed.
	EpisodeFailed
)

type episodeResult struct {
	episode *model.Episode
	status  EpisodeStatus
	err     error
}

// Outcome aggregates per-episode results for one drama.
type Outcome struct {
	Downloaded int
	Skipped    int
	Failed     int
	Total      int
}

// Successes counts episodes that are locally complete, whether freshly
// transferred or skipped.
func (o Outcome) Successes() int {
	return o.Downloaded + o.Skipped
}

// Complete reports whether every episode of the drama is locally complete.
func (o Outcome) Complete() bool {
	return o.Total > 0 && o.Successes() == o.Total
}

// Config holds Manager settings.
type Config struct {
	// EpisodeConcurrency bounds parallel episode downloads within one
	// drama. Defaults to 5.
	EpisodeConcurrency int

	// ProbeConcurrency bounds parallel size probes during estimation.
	// Defaults to 10.
	ProbeConcurrency int

	// CoverResize enables downscaling of cover images before saving.
	CoverResize bool

	// CoverMaxSize is the bounding box for resized covers, in pixels.
	CoverMaxSize int
}

// Manager executes the downloads for one drama at a time.
//
// Episodes are dispatched over a bounded worker pool; each episode is
// independent and one failure never cancels or blocks its siblings. Results
// are streamed over a channel into a single aggregator, so progress is
// observable episode by episode in completion order, which is not the
// submission order.
type Manager struct {
	client     *http.Client
	cfg        Config
	onProgress func(ProgressEvent)
}

// NewManager creates a Manager. onProgress may be nil.
func NewManager(client *http.Client, cfg Config, onProgress func(ProgressEvent)) *Manager {
	if cfg.EpisodeConcurrency <= 0 {
		cfg.EpisodeConcurrency = 5
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 10
	}
	return &Manager{
		client:     client,
		cfg:        cfg,
		onProgress: onProgress,
	}
}

// DownloadDrama fetches every episode of one drama into its folder and
// returns the aggregated outcome.
//
// The returned error is non-nil only when the drama could not be attempted
// at all (destination directory cannot be created); per-episode failures are
// reported through the Outcome instead.
func (m *Manager) DownloadDrama(ctx context.Context, drama *model.Drama, episodes []*model.Episode) (Outcome, error) {
	outcome := Outcome{Total: len(episodes)}

	if err := ioutils.EnsureDir(drama.Path); err != nil {
		return outcome, fmt.Errorf("create drama folder: %w", err)
	}

	if drama.HasCover() {
		m.downloadCover(ctx, drama)
	}

	if len(episodes) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: no downloadable episodes", drama.Title), Level: LevelWarning})
		return outcome, nil
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading %s (%d episodes, %d workers)", drama.Title, len(episodes), m.cfg.EpisodeConcurrency),
		Level:   LevelInfo,
	})

	results := make(chan episodeResult)

	var g errgroup.Group
	g.SetLimit(m.cfg.EpisodeConcurrency)

	for _, ep := range episodes {
		ep := ep
		g.Go(func() error {
			results <- m.downloadEpisode(ctx, ep)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		name := filepath.Base(res.episode.Path)

		switch res.status {
		case EpisodeSkipped:
			outcome.Skipped++
			m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s (skipped, already complete)", done, outcome.Total, name), Level: LevelVerbose, Done: done, Total: outcome.Total})
		case EpisodeDownloaded:
			outcome.Downloaded++
			m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s", done, outcome.Total, name), Level: LevelVerbose, Done: done, Total: outcome.Total})
		case EpisodeFailed:
			outcome.Failed++
			m.progress(ProgressEvent{Message: fmt.Sprintf("[%d/%d] %s failed: %v", done, outcome.Total, name, res.err), Level: LevelError, Done: done, Total: outcome.Total})
		}
	}

	if outcome.Complete() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %d/%d episodes complete", drama.Title, outcome.Successes(), outcome.Total), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %d/%d episodes complete, %d failed", drama.Title, outcome.Successes(), outcome.Total, outcome.Failed), Level: LevelWarning})
	}

	return outcome, nil
}

// downloadEpisode runs the per-episode procedure: probe the remote size,
// skip when the local file already matches it, otherwise stream the full
// body, overwriting any stale partial.
func (m *Manager) downloadEpisode(ctx context.Context, ep *model.Episode) episodeResult {
	remoteSize := m.client.ContentLength(ctx, ep.VideoURL)

	// An unknown (0) remote size never classifies a local file as
	// complete; the episode is downloaded again.
	if info, err := os.Stat(ep.Path); err == nil && remoteSize > 0 && info.Size() == remoteSize {
		return episodeResult{episode: ep, status: EpisodeSkipped}
	}

	if err := m.client.DownloadFile(ctx, ep.VideoURL, ep.Path, nil); err != nil {
		return episodeResult{episode: ep, status: EpisodeFailed, err: err}
	}

	return episodeResult{episode: ep, status: EpisodeDownloaded}
}

// downloadCover fetches the drama's cover image into its folder. Cover
// problems are warnings only and never affect the episode tally.
func (m *Manager) downloadCover(ctx context.Context, drama *model.Drama) {
	data, err := m.client.Get(ctx, drama.CoverURL, nil)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: cover download failed: %v", drama.Title, err), Level: LevelWarning})
		return
	}

	if m.cfg.CoverResize && m.cfg.CoverMaxSize > 0 {
		if resized, err := ioutils.FitJPEG(data, m.cfg.CoverMaxSize); err == nil {
			data = resized
		}
	}

	if err := ioutils.WriteFile(drama.CoverPath, data); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: saving cover failed: %v", drama.Title, err), Level: LevelWarning})
		return
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("%s: cover saved", drama.Title), Level: LevelVerbose})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
