package dramabox

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/saputra/dramabox-dl/internal/dramabox/dto"
	"github.com/saputra/dramabox-dl/internal/http"
	"github.com/saputra/dramabox-dl/internal/model"
)

// Config holds the API client configuration. All values are supplied at
// construction; the client never reads configuration sources itself.
type Config struct {
	BaseURL string
	APIKey  string
	Lang    string
	Paths   *model.PathConfig
}

// Client talks to the DramaBox catalog API.
//
// Every endpoint shares the same envelope ({success, message, data}) and the
// same transient-failure behaviour, which is handled one level down by the
// resilient HTTP client.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a Client on top of the given HTTP client.
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger) *Client {
	if cfg.Lang == "" {
		cfg.Lang = "in"
	}
	return &Client{
		http:   httpClient,
		cfg:    cfg,
		logger: logger.With("component", "dramabox"),
	}
}

// Detail bundles the drama metadata and chapter list served by the
// chapters endpoint.
type Detail struct {
	Drama    *model.Drama
	Chapters []dto.Chapter
}

// Listing fetches one page of the catalog. The second return value reports
// whether the origin claims more pages exist.
func (c *Client) Listing(ctx context.Context, page, pageSize int) ([]*model.Drama, bool, error) {
	params := c.params()
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	return c.listing(ctx, "new", params)
}

// Search queries the catalog by title.
func (c *Client) Search(ctx context.Context, query string, page int) ([]*model.Drama, bool, error) {
	params := c.params()
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	return c.listing(ctx, "search", params)
}

// Ranking fetches one page of the trending chart.
func (c *Client) Ranking(ctx context.Context, page int) ([]*model.Drama, bool, error) {
	params := c.params()
	params.Set("page", strconv.Itoa(page))
	return c.listing(ctx, "rank", params)
}

// ForYou fetches one page of recommendations.
func (c *Client) ForYou(ctx context.Context, page int) ([]*model.Drama, bool, error) {
	params := c.params()
	params.Set("page", strconv.Itoa(page))
	return c.listing(ctx, "foryou", params)
}

func (c *Client) listing(ctx context.Context, endpoint string, params url.Values) ([]*model.Drama, bool, error) {
	body, err := c.http.Get(ctx, c.endpoint(endpoint), params)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", endpoint, err)
	}

	var data dto.ListingData
	if err := dto.Decode(body, &data); err != nil {
		return nil, false, fmt.Errorf("%s: %w", endpoint, err)
	}

	dramas := make([]*model.Drama, 0, len(data.List))
	for _, book := range data.List {
		d, err := book.ToDrama(c.cfg.Paths)
		if err != nil {
			c.logger.Warn("dropping malformed listing entry", "error", err)
			continue
		}
		dramas = append(dramas, d)
	}

	return dramas, data.IsMore, nil
}

// Lookup fetches a single drama's metadata by ID.
func (c *Client) Lookup(ctx context.Context, bookID string) (*model.Drama, error) {
	det, err := c.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return det.Drama, nil
}

// Detail fetches drama metadata and the chapter list.
func (c *Client) Detail(ctx context.Context, bookID string) (*Detail, error) {
	params := c.params()
	params.Set("bookId", bookID)

	body, err := c.http.Get(ctx, c.endpoint("chapters"), params)
	if err != nil {
		return nil, fmt.Errorf("chapters %s: %w", bookID, err)
	}

	var data dto.DetailData
	if err := dto.Decode(body, &data); err != nil {
		return nil, fmt.Errorf("chapters %s: %w", bookID, err)
	}

	chapters := data.Chapters()

	title := data.BookName
	if title == "" {
		title = "Drama_" + bookID
	}
	count := data.ChapterCount
	if count == 0 {
		count = len(chapters)
	}

	return &Detail{
		Drama:    model.NewDrama(bookID, title, count, data.Cover, c.cfg.Paths),
		Chapters: chapters,
	}, nil
}

// Watch resolves the media URL for one episode by chapter index.
func (c *Client) Watch(ctx context.Context, bookID string, chapterIndex int) (string, error) {
	params := c.params()
	params.Set("bookId", bookID)
	params.Set("chapterIndex", strconv.Itoa(chapterIndex))
	params.Set("source", "search_result")
	params.Set("raw", "true")

	body, err := c.http.Get(ctx, c.endpoint("watch"), params)
	if err != nil {
		return "", fmt.Errorf("watch %s/%d: %w", bookID, chapterIndex, err)
	}

	var data dto.WatchData
	if err := dto.Decode(body, &data); err != nil {
		return "", fmt.Errorf("watch %s/%d: %w", bookID, chapterIndex, err)
	}
	if data.VideoURL == "" {
		return "", fmt.Errorf("watch %s/%d: no video url in response", bookID, chapterIndex)
	}
	return data.VideoURL, nil
}

// Player resolves the media URL for one episode by chapter ID. The player
// endpoint only accepts POST and serves as a fallback for unstable watch
// responses.
func (c *Client) Player(ctx context.Context, bookID, chapterID string) (string, error) {
	body, err := c.http.PostJSON(ctx, c.endpoint("player"), c.params(), map[string]string{
		"bookId":    bookID,
		"chapterId": chapterID,
	})
	if err != nil {
		return "", fmt.Errorf("player %s/%s: %w", bookID, chapterID, err)
	}

	var data dto.WatchData
	if err := dto.Decode(body, &data); err != nil {
		return "", fmt.Errorf("player %s/%s: %w", bookID, chapterID, err)
	}
	if data.VideoURL == "" {
		return "", fmt.Errorf("player %s/%s: no video url in response", bookID, chapterID)
	}
	return data.VideoURL, nil
}

// Episodes fetches the chapter list for a drama and resolves each chapter
// into a downloadable Episode.
//
// Chapters without an index are dropped. Chapters whose detail entry carries
// no media URL are resolved individually through watch, falling back to
// player; a chapter whose URL cannot be resolved at all is dropped with a
// warning rather than failing the drama.
func (c *Client) Episodes(ctx context.Context, drama *model.Drama) ([]*model.Episode, error) {
	det, err := c.Detail(ctx, drama.ID)
	if err != nil {
		return nil, err
	}

	episodes := make([]*model.Episode, 0, len(det.Chapters))
	for _, ch := range det.Chapters {
		if ch.ChapterIndex == nil {
			c.logger.Warn("chapter without index, skipping", "book_id", drama.ID, "chapter_id", string(ch.ChapterID))
			continue
		}

		videoURL := ch.VideoPath
		if videoURL == "" {
			videoURL, err = c.resolveVideoURL(ctx, drama.ID, ch)
			if err != nil {
				c.logger.Warn("could not resolve media url, skipping chapter",
					"book_id", drama.ID,
					"chapter_index", *ch.ChapterIndex,
					"error", err,
				)
				continue
			}
		}

		episodes = append(episodes, model.NewEpisode(drama, string(ch.ChapterID), *ch.ChapterIndex, ch.ChapterName, videoURL))
	}

	sort.Slice(episodes, func(i, j int) bool { return episodes[i].Index < episodes[j].Index })

	return episodes, nil
}

func (c *Client) resolveVideoURL(ctx context.Context, bookID string, ch dto.Chapter) (string, error) {
	videoURL, err := c.Watch(ctx, bookID, *ch.ChapterIndex)
	if err == nil {
		return videoURL, nil
	}

	if ch.ChapterID == "" {
		return "", err
	}
	return c.Player(ctx, bookID, string(ch.ChapterID))
}

func (c *Client) endpoint(name string) string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + name + ".php"
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("lang", c.cfg.Lang)
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	return params
}
