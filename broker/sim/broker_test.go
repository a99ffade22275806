package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmercier/quantctl/broker"
	"github.com/rmercier/quantctl/market"
)

func tickAt(sec int, bid, ask float64) market.Tick {
	return market.Tick{
		Instrument: "EUR_USD",
		Time:       time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC),
		Bid:        bid,
		Ask:        ask,
	}
}

func TestMarketOrderFillsAtQuote(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")
	b.Push(tickAt(0, 1.0849, 1.0851))

	buy, err := b.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD", Side: broker.Buy, Lots: 0.1, OwnerTag: 7,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0851, buy.Price, 1e-9)

	sell, err := b.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD", Side: broker.Sell, Lots: 0.1, OwnerTag: 7,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0849, sell.Price, 1e-9)
}

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")
	b.Push(tickAt(0, 1.0849, 1.0851))

	fill, err := b.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD", Side: broker.Buy, Lots: 0.1, OwnerTag: 7,
	})
	require.NoError(t, err)

	// +10 pips at $1/pip for 0.1 lots = +10.
	b.Push(tickAt(1, 1.0861, 1.0863))

	positions, err := b.OpenPositions(context.Background(), "EUR_USD")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, fill.PositionID, positions[0].ID)
	assert.InDelta(t, 10.0, positions[0].Profit, 1e-6)
}

func TestCommissionCharged(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")
	b.CommissionPerLot = 7.0
	b.Push(tickAt(0, 1.0849, 1.0851))

	_, err := b.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD", Side: broker.Buy, Lots: 0.5, OwnerTag: 7,
	})
	require.NoError(t, err)

	positions, err := b.OpenPositions(context.Background(), "EUR_USD")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.InDelta(t, -3.5, positions[0].Commission, 1e-9)
}

func TestClosePositionRealizes(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")
	b.Push(tickAt(0, 1.0849, 1.0851))

	fill, err := b.CreateMarketOrder(context.Background(), broker.MarketOrderRequest{
		Instrument: "EUR_USD", Side: broker.Buy, Lots: 0.1, OwnerTag: 7,
	})
	require.NoError(t, err)

	b.Push(tickAt(1, 1.0861, 1.0863))
	require.NoError(t, b.ClosePosition(context.Background(), fill.PositionID))

	positions, err := b.OpenPositions(context.Background(), "EUR_USD")
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.InDelta(t, 10.0, b.Realized(), 1e-6)

	assert.Error(t, b.ClosePosition(context.Background(), fill.PositionID))
}

func TestCandleAggregation(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")

	// Three ticks in the same minute, one in the next.
	b.Push(tickAt(0, 1.0800, 1.0802))
	b.Push(tickAt(10, 1.0820, 1.0822))
	b.Push(tickAt(50, 1.0790, 1.0792))
	b.Push(market.Tick{
		Instrument: "EUR_USD",
		Time:       time.Date(2026, 3, 1, 12, 1, 5, 0, time.UTC),
		Bid:        1.0810, Ask: 1.0812,
	})

	candles, err := b.GetCandles(context.Background(), "EUR_USD", 100)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	first := candles[0]
	assert.InDelta(t, 1.0801, first.Open, 1e-9)
	assert.InDelta(t, 1.0821, first.High, 1e-9)
	assert.InDelta(t, 1.0791, first.Low, 1e-9)
	assert.InDelta(t, 1.0791, first.Close, 1e-9)
	assert.InDelta(t, 3, first.Volume, 1e-9)

	assert.InDelta(t, 1, candles[1].Volume, 1e-9)
}

func TestGetCandlesBounded(t *testing.T) {
	t.Parallel()

	b := New("EUR_USD")
	for i := 0; i < 120; i++ {
		b.Push(market.Tick{
			Instrument: "EUR_USD",
			Time:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
			Bid:        1.08, Ask: 1.0802,
		})
	}

	candles, err := b.GetCandles(context.Background(), "EUR_USD", 100)
	require.NoError(t, err)
	assert.Len(t, candles, 100)

	candles, err = b.GetCandles(context.Background(), "EUR_USD", 10)
	require.NoError(t, err)
	assert.Len(t, candles, 10)
}
