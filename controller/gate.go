package controller

import (
	"github.com/rmercier/quantctl/ledger"
	"github.com/rmercier/quantctl/market"
)

// recoveryAllowed blocks re-entry right on top of the most recent owned
// position: the direction-appropriate quote (ask for a buy, bid for a sell)
// must be at least MinRecoveryPips away from that position's open price.
// With no owned position, or no open price to measure against, entry is
// always allowed.
func (c *Controller) recoveryAllowed(isBuy bool, view ledger.View, tick market.Tick) bool {
	if view.Count == 0 {
		return true
	}
	last, ok := view.LastOpenPrice()
	if !ok {
		return true
	}

	quote := tick.Ask
	if !isBuy {
		quote = tick.Bid
	}

	return c.params.Meta.PipDistance(quote, last) >= c.params.MinRecoveryPips
}
