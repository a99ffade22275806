package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmercier/quantctl/broker"
	"github.com/rmercier/quantctl/journal"
	"github.com/rmercier/quantctl/ledger"
	"github.com/rmercier/quantctl/pkg/id"
	"github.com/rmercier/quantctl/risk"
)

// ErrPartialClose reports that at least one close request failed during a
// flatten; the remaining positions were still attempted.
var ErrPartialClose = errors.New("controller: partial close failed")

// open dispatches exactly one market order in the decided direction. No
// per-order stop or take-profit: risk is managed globally by the monitor.
func (c *Controller) open(ctx context.Context, action Action) error {
	side := broker.Buy
	if action == Sell {
		side = broker.Sell
	}

	fill, err := c.broker.CreateMarketOrder(ctx, broker.MarketOrderRequest{
		Instrument: c.params.Instrument,
		Side:       side,
		Lots:       c.params.Lots,
		OwnerTag:   c.params.OwnerTag,
		Comment:    "quantctl",
	})
	if err != nil {
		c.log.Error().Err(err).Stringer("side", side).Msg("market order rejected")
		return fmt.Errorf("market order: %w", err)
	}

	if c.metrics != nil {
		c.metrics.OrdersOpened.Inc()
	}
	c.log.Info().
		Stringer("side", side).
		Float64("lots", c.params.Lots).
		Float64("price", fill.Price).
		Str("position_id", fill.PositionID).
		Msg("opened position")

	if err := c.journal.RecordOrder(journal.OrderRecord{
		ID:         id.New(),
		Time:       fill.Time,
		Instrument: c.params.Instrument,
		Side:       side.String(),
		Lots:       c.params.Lots,
		Price:      fill.Price,
		OwnerTag:   c.params.OwnerTag,
		Reason:     "signal-entry",
	}); err != nil {
		c.log.Warn().Err(err).Msg("journal order failed")
	}
	return nil
}

// trip latches the kill-switch and flattens every owned position. A failed
// individual close is logged and skipped; it never aborts the rest, and
// trading stays disabled regardless.
func (c *Controller) trip(ctx context.Context, verdict risk.Verdict, view ledger.View) {
	pl := risk.NetPL(view.Positions)
	c.log.Warn().
		Stringer("verdict", verdict).
		Float64("net_pl", pl).
		Int("open_positions", view.Count).
		Msg("risk limit breached, disabling trading")

	c.tradingEnabled = false
	if c.metrics != nil {
		c.metrics.KillSwitch.Set(1)
	}

	if err := c.closeAll(ctx, verdict.String(), view); err != nil {
		c.log.Error().Err(err).Msg("flatten incomplete")
	}

	if err := c.journal.RecordEvent(journal.EventRecord{
		Time:   c.now(),
		Kind:   "kill-switch",
		Detail: fmt.Sprintf("%s net_pl=%.2f", verdict, pl),
	}); err != nil {
		c.log.Warn().Err(err).Msg("journal event failed")
	}
}

// closeAll issues one close request per owned position.
func (c *Controller) closeAll(ctx context.Context, reason string, view ledger.View) error {
	var failed []error
	for _, p := range view.Positions {
		if err := c.broker.ClosePosition(ctx, p.ID); err != nil {
			c.log.Error().Err(err).Str("position_id", p.ID).Msg("close failed")
			failed = append(failed, fmt.Errorf("close %s: %w", p.ID, err))
			continue
		}
		if c.metrics != nil {
			c.metrics.OrdersClosed.Inc()
		}
		if err := c.journal.RecordOrder(journal.OrderRecord{
			ID:         id.New(),
			Time:       c.now(),
			Instrument: p.Instrument,
			Side:       "close",
			Lots:       p.Lots,
			Price:      p.OpenPrice,
			OwnerTag:   p.OwnerTag,
			Reason:     reason,
		}); err != nil {
			c.log.Warn().Err(err).Msg("journal close failed")
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", ErrPartialClose, errors.Join(failed...))
	}
	return nil
}
