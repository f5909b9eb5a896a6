package nba

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates outbound requests. Wait blocks until the next request may go
// out or ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

// MinIntervalPacer lets one request through per interval, with no burst.
type MinIntervalPacer struct {
	limiter *rate.Limiter
}

// NewMinIntervalPacer returns a gate spacing requests at least interval
// apart. A non-positive interval disables pacing.
func NewMinIntervalPacer(interval time.Duration) *MinIntervalPacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &MinIntervalPacer{limiter: rate.NewLimiter(limit, 1)}
}

func (p *MinIntervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// AllowAt reports whether a request at now may proceed, consuming the slot
// if so.
func (p *MinIntervalPacer) AllowAt(now time.Time) bool {
	return p.limiter.AllowN(now, 1)
}

type noPacing struct{}

func (noPacing) Wait(ctx context.Context) error {
	return ctx.Err()
}

var NoPacing Pacer = noPacing{}
