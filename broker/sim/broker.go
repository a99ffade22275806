package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rmercier/quantctl/broker"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/pkg/id"
)

const (
	maxCandles          = 100
	defaultContractSize = 100_000
)

// Broker is an in-memory trading platform: it marks open positions to market
// on every pushed tick and aggregates ticks into minute bars so the
// controller has a candle history to snapshot from.
type Broker struct {
	mu         sync.Mutex
	instrument string
	tick       market.Tick
	haveTick   bool
	candles    []market.Candle
	positions  []broker.Position
	realized   float64

	// CommissionPerLot is charged (negatively) at fill time.
	CommissionPerLot float64
	// ContractSize converts lots * price-delta into account currency.
	ContractSize float64
}

func New(instrument string) *Broker {
	return &Broker{
		instrument:   instrument,
		ContractSize: defaultContractSize,
	}
}

// Push feeds one tick into the platform: updates the quote, extends the
// candle history and re-marks every open position.
func (b *Broker) Push(t market.Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tick = t
	b.haveTick = true
	b.updateCandles(t)
	b.markToMarket()
}

func (b *Broker) updateCandles(t market.Tick) {
	mid := t.Mid()
	bucket := t.Time.Truncate(time.Minute)

	if n := len(b.candles); n > 0 && b.candles[n-1].Time.Equal(bucket) {
		c := &b.candles[n-1]
		if mid > c.High {
			c.High = mid
		}
		if mid < c.Low {
			c.Low = mid
		}
		c.Close = mid
		c.Volume++
		return
	}

	b.candles = append(b.candles, market.Candle{
		Time: bucket, Open: mid, High: mid, Low: mid, Close: mid, Volume: 1,
	})
	if len(b.candles) > maxCandles {
		b.candles = b.candles[len(b.candles)-maxCandles:]
	}
}

func (b *Broker) markToMarket() {
	for i := range b.positions {
		p := &b.positions[i]
		switch p.Side {
		case broker.Buy:
			p.Profit = (b.tick.Bid - p.OpenPrice) * p.Lots * b.ContractSize
		case broker.Sell:
			p.Profit = (p.OpenPrice - b.tick.Ask) * p.Lots * b.ContractSize
		}
	}
}

func (b *Broker) GetTick(ctx context.Context, instrument string) (market.Tick, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.haveTick || instrument != b.instrument {
		return market.Tick{}, fmt.Errorf("sim: no tick for %s", instrument)
	}
	return b.tick, nil
}

func (b *Broker) GetCandles(ctx context.Context, instrument string, n int) ([]market.Candle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if instrument != b.instrument {
		return nil, fmt.Errorf("sim: no candles for %s", instrument)
	}
	cs := b.candles
	if len(cs) > n {
		cs = cs[len(cs)-n:]
	}
	out := make([]market.Candle, len(cs))
	copy(out, cs)
	return out, nil
}

// OpenPositions returns every open position newest-first (reverse insertion
// order), matching the platform ordering contract the ledger relies on.
func (b *Broker) OpenPositions(ctx context.Context, instrument string) ([]broker.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]broker.Position, 0, len(b.positions))
	for i := len(b.positions) - 1; i >= 0; i-- {
		if b.positions[i].Instrument == instrument {
			out = append(out, b.positions[i])
		}
	}
	return out, nil
}

func (b *Broker) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.haveTick || req.Instrument != b.instrument {
		return broker.OrderFill{}, fmt.Errorf("sim: no market for %s", req.Instrument)
	}
	if req.Lots <= 0 {
		return broker.OrderFill{}, fmt.Errorf("sim: non-positive lots %v", req.Lots)
	}

	price := b.tick.Ask
	if req.Side == broker.Sell {
		price = b.tick.Bid
	}

	p := broker.Position{
		ID:         id.New(),
		Instrument: req.Instrument,
		OwnerTag:   req.OwnerTag,
		Side:       req.Side,
		Lots:       req.Lots,
		OpenPrice:  price,
		OpenTime:   b.tick.Time,
		Commission: -b.CommissionPerLot * req.Lots,
	}
	b.positions = append(b.positions, p)

	return broker.OrderFill{PositionID: p.ID, Price: price, Time: b.tick.Time}, nil
}

func (b *Broker) ClosePosition(ctx context.Context, posID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.positions {
		if p.ID == posID {
			b.realized += p.NetPL()
			b.positions = append(b.positions[:i], b.positions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("sim: position %s not found", posID)
}

// Realized returns the accumulated P&L of all closed positions.
func (b *Broker) Realized() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.realized
}

// Seed installs a position directly, bypassing order flow. Test hook.
func (b *Broker) Seed(p broker.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = id.New()
	}
	b.positions = append(b.positions, p)
}

// SetPL overrides the running P&L components of a position. Test hook.
func (b *Broker) SetPL(posID string, profit, swap, commission float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.positions {
		if b.positions[i].ID == posID {
			b.positions[i].Profit = profit
			b.positions[i].Swap = swap
			b.positions[i].Commission = commission
			return true
		}
	}
	return false
}
