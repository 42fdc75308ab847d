// Package integration holds the concrete issue/PR provider clients and
// the pieces they share: sentinel errors and the outbound request
// budget. The engine in internal/autolink consumes them through its
// Integration interface.
package integration

import (
	"errors"

	"golang.org/x/time/rate"
)

var (
	// ErrNotConnected means the integration has no usable credentials.
	ErrNotConnected = errors.New("integration not connected")
	// ErrRateLimited means the outbound request budget is exhausted.
	ErrRateLimited = errors.New("integration request budget exhausted")
)

// Budget caps outbound API calls with a token bucket. A nil Budget
// allows everything.
type Budget struct {
	limiter *rate.Limiter
}

// NewBudget returns a budget allowing rps sustained requests per
// second with the given burst.
func NewBudget(rps float64, burst int) *Budget {
	return &Budget{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow consumes one request slot, returning ErrRateLimited when the
// budget is exhausted.
func (b *Budget) Allow() error {
	if b == nil || b.limiter == nil {
		return nil
	}
	if !b.limiter.Allow() {
		return ErrRateLimited
	}
	return nil
}
