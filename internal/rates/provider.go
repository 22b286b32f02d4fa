// Package rates resolves exchange rates for currency pairs. The primary
// source publishes a daily table quoted in the base currency; cross rates
// between two foreign currencies are derived from that table. A Redis
// cache in front of the source keeps evaluation cycles cheap.
package rates

import (
	"context"
	"errors"
)

// ErrNoRate signals that the source does not quote the requested pair.
var ErrNoRate = errors.New("rates: no rate for pair")

// Provider resolves the current exchange rate of one unit of from
// expressed in to.
type Provider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}
