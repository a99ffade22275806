package controller

import (
	"github.com/rmercier/quantctl/ledger"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/signal"
)

// Action is the decision engine's output for one tick.
type Action int

const (
	None Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "none"
}

// minMLProbability is the classifier-confidence floor; at or below it no
// entry is taken regardless of the other signals.
const minMLProbability = 0.65

// decide combines the latest signal with ledger state. Gates apply in strict
// order: capacity, regime/ML confidence, z-score + Kalman direction, then
// the recovery distance on the candidate.
func (c *Controller) decide(sig signal.Signal, view ledger.View, tick market.Tick) Action {
	if view.Count >= c.params.MaxPositions {
		return None
	}
	if !sig.IsDirectionalRegime || sig.MLProbability <= minMLProbability {
		return None
	}

	var candidate Action
	switch {
	case sig.ZScore < -c.params.ZThreshold && sig.KalmanSignal:
		candidate = Buy
	case sig.ZScore > c.params.ZThreshold && sig.KalmanSignal:
		candidate = Sell
	default:
		return None
	}

	if !c.recoveryAllowed(candidate == Buy, view, tick) {
		return None
	}
	return candidate
}
