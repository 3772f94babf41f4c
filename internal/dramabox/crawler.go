package dramabox

import (
	"context"
	"log/slog"

	"github.com/saputra/dramabox-dl/internal/model"
)

const (
	// maxPages is a safety bound against runaway pagination.
	maxPages = 500

	// maxStalePages terminates the crawl once this many consecutive pages
	// contribute no new dramas. The origin may repeat the last page forever
	// instead of signalling end-of-data.
	maxStalePages = 2
)

// Lister is the slice of the API client the crawler needs.
type Lister interface {
	Listing(ctx context.Context, page, pageSize int) ([]*model.Drama, bool, error)
}

// Crawler walks the paginated catalog listing and materializes the full set
// of unique dramas.
type Crawler struct {
	lister   Lister
	pageSize int
	logger   *slog.Logger
}

// NewCrawler creates a Crawler.
func NewCrawler(lister Lister, pageSize int, logger *slog.Logger) *Crawler {
	return &Crawler{
		lister:   lister,
		pageSize: pageSize,
		logger:   logger.With("component", "crawler"),
	}
}

// CrawlAll fetches every catalog page and returns the deduplicated dramas in
// first-seen order.
//
// The crawl stops when the origin reports no more pages, when maxStalePages
// consecutive pages contribute nothing new, when the page ceiling is hit, or
// when a page fetch fails. A fetch failure returns whatever was accumulated
// so far together with the error; partial results are usable.
func (c *Crawler) CrawlAll(ctx context.Context) ([]*model.Drama, error) {
	var dramas []*model.Drama
	seen := make(map[string]struct{})
	stalePages := 0

	for page := 1; page <= maxPages; page++ {
		books, hasMore, err := c.lister.Listing(ctx, page, c.pageSize)
		if err != nil {
			c.logger.Warn("page fetch failed, keeping partial results",
				"page", page,
				"collected", len(dramas),
				"error", err,
			)
			return dramas, err
		}

		if len(books) == 0 {
			break
		}

		newInPage := 0
		for _, d := range books {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			dramas = append(dramas, d)
			newInPage++
		}

		c.logger.Debug("crawled page",
			"page", page,
			"entries", len(books),
			"new", newInPage,
			"total", len(dramas),
		)

		if newInPage == 0 {
			stalePages++
			if stalePages >= maxStalePages {
				c.logger.Info("repeated pages detected, stopping crawl", "page", page, "total", len(dramas))
				break
			}
		} else {
			stalePages = 0
		}

		if !hasMore {
			break
		}
	}

	c.logger.Info("crawl finished", "dramas", len(dramas))
	return dramas, nil
}
