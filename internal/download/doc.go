// Package download provides the per-drama download scheduler.
//
// # Scheduler
//
// Manager.DownloadDrama distributes one drama's episodes over a bounded
// worker pool. For each episode it resolves the remote size (HEAD with a
// streamed-GET fallback), skips the transfer when a local file of the
// expected name already has exactly that size, and otherwise streams the
// full body to disk, overwriting stale partials. Failures are isolated:
// one episode failing never cancels its siblings, and the scheduler itself
// never retries (transport-level retry lives in the HTTP client).
//
//	manager := download.NewManager(httpClient, download.Config{}, func(ev download.ProgressEvent) {
//	    fmt.Println(ev.Message)
//	})
//	outcome, err := manager.DownloadDrama(ctx, drama, episodes)
//	// outcome.Complete() → every episode is locally complete
//
// Per-episode results are funnelled through a channel into a single
// aggregator goroutine, so no shared counters are mutated concurrently.
// Completion order is not submission order; callers must not assume
// ordering.
//
// # Size estimation
//
// Manager.EstimateSize sums remote episode sizes over a wider probe pool.
// It honours cancellation by returning the partial sum instead of an error,
// so a user can cut the estimate short and continue.
package download
