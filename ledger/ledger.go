package ledger

import (
	"context"

	"github.com/rmercier/quantctl/broker"
)

// View is one refreshed snapshot of the positions this controller owns,
// most recent first. It is a read-through over the broker; the count is
// recomputed in full on every refresh so staleness cannot accumulate.
type View struct {
	Positions []broker.Position
	Count     int
}

// LastOpenPrice returns the open price of the most recent owned position.
// ok is false when no owned position exists.
func (v View) LastOpenPrice() (price float64, ok bool) {
	if len(v.Positions) == 0 {
		return 0, false
	}
	return v.Positions[0].OpenPrice, true
}

// Ledger filters the broker's open positions down to the ones carrying this
// controller's owner tag. It never mutates positions; opens and closes go
// through the broker.
type Ledger struct {
	broker     broker.Broker
	instrument string
	ownerTag   int64
}

func New(b broker.Broker, instrument string, ownerTag int64) *Ledger {
	return &Ledger{broker: b, instrument: instrument, ownerTag: ownerTag}
}

// Refresh re-scans the broker's positions and returns the owned subset in
// the broker's own most-recent-first order. Safe to call any number of
// times per tick.
func (l *Ledger) Refresh(ctx context.Context) (View, error) {
	all, err := l.broker.OpenPositions(ctx, l.instrument)
	if err != nil {
		return View{}, err
	}

	owned := make([]broker.Position, 0, len(all))
	for _, p := range all {
		if p.OwnerTag == l.ownerTag {
			owned = append(owned, p)
		}
	}
	return View{Positions: owned, Count: len(owned)}, nil
}
