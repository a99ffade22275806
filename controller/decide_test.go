package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rmercier/quantctl/broker/sim"
	"github.com/rmercier/quantctl/ledger"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/risk"
	"github.com/rmercier/quantctl/signal"
)

func testParams() Params {
	return Params{
		Instrument:      "EUR_USD",
		Meta:            market.Instruments["EUR_USD"],
		Lots:            0.1,
		ZThreshold:      2.0,
		MinRecoveryPips: 15,
		MaxPositions:    3,
		OwnerTag:        777,
		FetchInterval:   10 * time.Second,
		HistoryBars:     100,
	}
}

type stubFetcher struct {
	sig   signal.Signal
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ signal.Snapshot) (signal.Signal, error) {
	f.calls++
	return f.sig, f.err
}

func newTestController(t *testing.T, b *sim.Broker, f Fetcher, opts ...Option) *Controller {
	t.Helper()

	c, err := New(testParams(), b, f, risk.Limits{MaxLoss: 1000, MaxProfit: 2000}, opts...)
	require.NoError(t, err)
	return c
}

func buySignal() signal.Signal {
	return signal.Signal{
		ZScore:              -2.5,
		IsDirectionalRegime: true,
		MLProbability:       0.8,
		KalmanSignal:        true,
	}
}

func testTick(bid, ask float64) market.Tick {
	return market.Tick{
		Instrument: "EUR_USD",
		Time:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Bid:        bid,
		Ask:        ask,
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tick := testTick(1.0849, 1.0851)
	empty := ledger.View{}

	tests := []struct {
		name string
		sig  signal.Signal
		view ledger.View
		want Action
	}{
		{"buy on deep negative z with kalman", buySignal(), empty, Buy},
		{
			"sell on positive z",
			signal.Signal{ZScore: 2.5, IsDirectionalRegime: true, MLProbability: 0.8, KalmanSignal: true},
			empty, Sell,
		},
		{
			"no regime",
			signal.Signal{ZScore: -2.5, IsDirectionalRegime: false, MLProbability: 0.8, KalmanSignal: true},
			empty, None,
		},
		{
			"ml probability at floor",
			signal.Signal{ZScore: -2.5, IsDirectionalRegime: true, MLProbability: 0.65, KalmanSignal: true},
			empty, None,
		},
		{
			"ml probability just above floor",
			signal.Signal{ZScore: -2.5, IsDirectionalRegime: true, MLProbability: 0.651, KalmanSignal: true},
			empty, Buy,
		},
		{
			"no kalman confirmation",
			signal.Signal{ZScore: -2.5, IsDirectionalRegime: true, MLProbability: 0.8, KalmanSignal: false},
			empty, None,
		},
		{
			"z inside threshold",
			signal.Signal{ZScore: -1.9, IsDirectionalRegime: true, MLProbability: 0.8, KalmanSignal: true},
			empty, None,
		},
		{
			"z exactly at threshold",
			signal.Signal{ZScore: -2.0, IsDirectionalRegime: true, MLProbability: 0.8, KalmanSignal: true},
			empty, None,
		},
	}

	b := sim.New("EUR_USD")
	c := newTestController(t, b, &stubFetcher{})

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.decide(tt.sig, tt.view, tick)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecideCapacityGate(t *testing.T) {
	t.Parallel()

	b := sim.New("EUR_USD")
	c := newTestController(t, b, &stubFetcher{})
	tick := testTick(1.0849, 1.0851)

	full := ledger.View{Count: 3}

	// At capacity every possible direction is refused, even the strongest.
	signals := []signal.Signal{
		buySignal(),
		{ZScore: 5, IsDirectionalRegime: true, MLProbability: 0.99, KalmanSignal: true},
		{ZScore: -5, IsDirectionalRegime: true, MLProbability: 0.99, KalmanSignal: true},
	}
	for _, sig := range signals {
		require.Equal(t, None, c.decide(sig, full, tick))
	}
}
