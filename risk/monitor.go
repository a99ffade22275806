package risk

import "github.com/rmercier/quantctl/broker"

// Verdict is the outcome of one risk evaluation pass.
type Verdict int

const (
	Continue Verdict = iota
	TakeProfit
	StopLoss
)

func (v Verdict) String() string {
	switch v {
	case TakeProfit:
		return "take-profit"
	case StopLoss:
		return "stop-loss"
	}
	return "continue"
}

// Limits are absolute account-currency thresholds, not equity percentages.
type Limits struct {
	MaxLoss   float64 // positive number; breach at sum <= -MaxLoss
	MaxProfit float64 // breach at sum >= MaxProfit
}

// NetPL sums profit + swap + commission over the given positions. Callers
// pass an already owner-filtered set; NetPL does no filtering of its own.
func NetPL(positions []broker.Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.NetPL()
	}
	return total
}

// Evaluate is a pure function of the aggregate P&L of the given positions.
// On TakeProfit or StopLoss the caller must flatten every owned position and
// latch the kill-switch; Evaluate itself has no side effects.
func (l Limits) Evaluate(positions []broker.Position) Verdict {
	total := NetPL(positions)
	switch {
	case l.MaxProfit > 0 && total >= l.MaxProfit:
		return TakeProfit
	case l.MaxLoss > 0 && total <= -l.MaxLoss:
		return StopLoss
	}
	return Continue
}
