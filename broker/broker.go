package broker

import (
	"context"

	"github.com/rmercier/quantctl/market"
)

// Broker is the trading platform boundary. The controller never touches
// positions directly; it observes them here and issues open/close requests.
type Broker interface {
	GetTick(ctx context.Context, instrument string) (market.Tick, error)

	// GetCandles returns up to n most recent bars, oldest first. Fewer than
	// n bars is not an error.
	GetCandles(ctx context.Context, instrument string, n int) ([]market.Candle, error)

	// OpenPositions returns every open position on the instrument, most
	// recent first per the platform's own ordering. Owner filtering is the
	// caller's job.
	OpenPositions(ctx context.Context, instrument string) ([]Position, error)

	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
	ClosePosition(ctx context.Context, id string) error
}
