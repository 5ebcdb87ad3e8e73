package html2json

import "context"

// HostLimiter throttles URL fetches per host, so extracting from many pages
// of one site stays polite regardless of the overall concurrency.
type HostLimiter interface {
	// Wait blocks until a request to host may proceed or the context is
	// done.
	Wait(ctx context.Context, host string) error
}
