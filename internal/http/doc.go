// Package http provides the resilient HTTP client every other component
// builds on.
//
// # Retry policy
//
// Transport-level failures (connection errors, timeouts) and transient
// statuses (502) are retried with linear backoff: the sleep before attempt
// n+1 is baseDelay × n. When the attempt budget runs out the call fails with
// an error wrapping ErrMaxRetries. Other error statuses are not retried and
// surface immediately as *StatusError:
//
//	data, err := client.Get(ctx, url, params)
//	var se *http.StatusError
//	if errors.As(err, &se) {
//	    // permanent failure, se.Code has the status
//	}
//
// # Size probing
//
// ContentLength resolves a remote file size via HEAD, falling back to a
// streamed GET (headers only, body aborted) for origins that reject HEAD.
// An unknown size resolves to 0 rather than an error.
package http
