// Package dramabox provides the DramaBox catalog API client and the
// catalog crawler.
//
// # Client
//
// Client wraps the API endpoints behind typed methods. Every endpoint
// returns the same {success, message, data} envelope, decoded by the dto
// subpackage; an unsuccessful envelope or a payload missing required fields
// is an error, never a silent default.
//
//	client := dramabox.NewClient(httpClient, dramabox.Config{
//	    BaseURL: "https://streamapi.web.id/api-dramabox",
//	    Lang:    "in",
//	    Paths:   pathConfig,
//	}, logger)
//
//	dramas, hasMore, err := client.Listing(ctx, 1, 10)
//	episodes, err := client.Episodes(ctx, dramas[0])
//
// # Crawler
//
// Crawler materializes the full catalog by walking the listing pages,
// deduplicating by book ID and guarding against origins that repeat the
// last page indefinitely:
//
//	crawler := dramabox.NewCrawler(client, 10, logger)
//	dramas, err := crawler.CrawlAll(ctx)
//	// err != nil still means dramas holds usable partial results
package dramabox
