// Package quote defines the raw price observation consumed by the signing pipeline.
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single price observation: Price * 10^Exponent.
type Quote struct {
	FeedID      string
	Price       int64
	Exponent    int32
	Confidence  uint64
	PublishTime time.Time
}

// Decimal returns the quoted price as a decimal.
func (q Quote) Decimal() decimal.Decimal {
	return decimal.New(q.Price, q.Exponent)
}

// Age returns how old the quote is relative to now.
func (q Quote) Age(now time.Time) time.Duration {
	if q.PublishTime.IsZero() {
		return 0
	}
	return now.Sub(q.PublishTime)
}
