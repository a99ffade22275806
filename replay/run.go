package replay

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rmercier/quantctl/broker/sim"
	"github.com/rmercier/quantctl/controller"
)

// Run drives the controller through every tick in the feed:
//  1. push the tick into the sim broker (mark-to-market, candle history)
//  2. hand the tick to the controller
//
// Tick-handler errors are logged and the replay continues; the loop stops
// only at EOF, on a feed error, or when ctx is done.
func Run(ctx context.Context, feed *Feed, b *sim.Broker, ctrl *controller.Controller, log zerolog.Logger) (int, error) {
	var n int
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		tick, ok, err := feed.Next()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++

		b.Push(tick)
		if err := ctrl.OnTick(ctx, tick); err != nil {
			log.Warn().Err(err).Int("tick", n).Msg("tick handler error")
		}
	}
}
