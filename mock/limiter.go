package mock

import (
	"context"

	"github.com/qretaio/html2json"
)

var _ html2json.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of html2json.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
