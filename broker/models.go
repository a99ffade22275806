package broker

import "time"

type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Position is owned by the platform and observed here. OwnerTag identifies
// which controller (or human) opened it.
type Position struct {
	ID         string
	Instrument string
	OwnerTag   int64
	Side       Side
	Lots       float64
	OpenPrice  float64
	OpenTime   time.Time
	Profit     float64 // unrealized, account currency
	Swap       float64
	Commission float64
}

// NetPL is the position's running profit including carry and fees.
func (p Position) NetPL() float64 {
	return p.Profit + p.Swap + p.Commission
}

type MarketOrderRequest struct {
	Instrument string
	Side       Side
	Lots       float64
	OwnerTag   int64
	Comment    string
}

type OrderFill struct {
	PositionID string
	Price      float64
	Time       time.Time
}
