package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rmercier/quantctl/broker"
	"github.com/rmercier/quantctl/journal"
	"github.com/rmercier/quantctl/ledger"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/metrics"
	"github.com/rmercier/quantctl/risk"
	"github.com/rmercier/quantctl/signal"
)

// Fetcher is the analytics-service boundary; *signal.Client is the real one.
type Fetcher interface {
	Fetch(ctx context.Context, snap signal.Snapshot) (signal.Signal, error)
}

// Params is the controller's configured behavior. Meta must describe
// params.Instrument.
type Params struct {
	Instrument      string
	Meta            market.InstrumentMeta
	Lots            float64
	ZThreshold      float64
	MinRecoveryPips float64
	MaxPositions    int
	OwnerTag        int64
	FetchInterval   time.Duration
	HistoryBars     int
}

// Controller is the per-tick execution loop. It is single-threaded by
// contract: the host calls OnTick sequentially and each call returns before
// the next tick is delivered.
type Controller struct {
	params   Params
	broker   broker.Broker
	ledger   *ledger.Ledger
	limits   risk.Limits
	fetcher  Fetcher
	throttle *signal.Throttle
	journal  journal.Journal
	metrics  *metrics.Set
	log      zerolog.Logger
	now      func() time.Time

	// tradingEnabled transitions true->false exactly once, on a risk breach.
	// Re-arming requires a restart.
	tradingEnabled bool
}

// Option tweaks optional collaborators.
type Option func(*Controller)

func WithJournal(j journal.Journal) Option {
	return func(c *Controller) { c.journal = j }
}

func WithMetrics(m *metrics.Set) Option {
	return func(c *Controller) { c.metrics = m }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(p Params, b broker.Broker, f Fetcher, limits risk.Limits, opts ...Option) (*Controller, error) {
	if p.Instrument == "" {
		return nil, errors.New("controller: instrument required")
	}
	if p.Meta.Point <= 0 {
		return nil, fmt.Errorf("controller: bad point size for %s", p.Instrument)
	}
	if p.Lots <= 0 {
		return nil, errors.New("controller: lots must be positive")
	}
	if p.MaxPositions <= 0 {
		return nil, errors.New("controller: max positions must be positive")
	}
	if p.FetchInterval <= 0 {
		p.FetchInterval = 10 * time.Second
	}
	if p.HistoryBars <= 0 {
		p.HistoryBars = 100
	}

	c := &Controller{
		params:         p,
		broker:         b,
		ledger:         ledger.New(b, p.Instrument, p.OwnerTag),
		limits:         limits,
		fetcher:        f,
		throttle:       signal.NewThrottle(p.FetchInterval),
		journal:        journal.Nop{},
		log:            zerolog.Nop(),
		now:            time.Now,
		tradingEnabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TradingEnabled reports whether the kill-switch has latched yet.
func (c *Controller) TradingEnabled() bool {
	return c.tradingEnabled
}

// OnTick runs one pass: refresh ledger, evaluate risk (which may latch the
// kill-switch and flatten everything), then — rate-limited — fetch a signal
// and maybe dispatch one order. Every failure downgrades to "skip this
// tick"; the returned error is for the caller's logs only.
func (c *Controller) OnTick(ctx context.Context, tick market.Tick) error {
	if tick.Instrument != c.params.Instrument {
		return nil
	}

	view, err := c.ledger.Refresh(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("ledger refresh failed, skipping tick")
		return err
	}
	if c.metrics != nil {
		c.metrics.OpenPositions.Set(float64(view.Count))
	}

	if !c.tradingEnabled {
		return nil
	}

	if verdict := c.limits.Evaluate(view.Positions); verdict != risk.Continue {
		c.trip(ctx, verdict, view)
		return nil
	}

	now := c.now()
	if !c.throttle.Ready(now) {
		return nil
	}
	// Failed attempts count against the interval too.
	c.throttle.Mark(now)

	sig, err := c.fetch(ctx)
	if err != nil {
		c.observeFetchError(err)
		c.log.Warn().Err(err).Msg("signal fetch failed, skipping tick")
		return nil
	}

	if err := c.journal.RecordSignal(journal.SignalRecord{
		Time:          now,
		ZScore:        sig.ZScore,
		Regime:        sig.IsDirectionalRegime,
		MLProbability: sig.MLProbability,
		Kalman:        sig.KalmanSignal,
		Hedge:         sig.HedgeSignal,
		Correlation:   sig.Correlation,
		OptimalStop:   sig.OptimalStopSignal,
	}); err != nil {
		c.log.Warn().Err(err).Msg("journal signal failed")
	}

	action := c.decide(sig, view, tick)
	if c.metrics != nil {
		c.metrics.Decisions.WithLabelValues(action.String()).Inc()
	}
	c.log.Debug().
		Float64("z_score", sig.ZScore).
		Bool("regime", sig.IsDirectionalRegime).
		Float64("ml_probability", sig.MLProbability).
		Int("open_positions", view.Count).
		Stringer("action", action).
		Msg("decision")

	if action == None {
		return nil
	}
	return c.open(ctx, action)
}

// fetch snapshots recent bars from the broker and runs one protocol cycle.
func (c *Controller) fetch(ctx context.Context) (signal.Signal, error) {
	if c.metrics != nil {
		c.metrics.FetchAttempts.Inc()
	}

	candles, err := c.broker.GetCandles(ctx, c.params.Instrument, c.params.HistoryBars)
	if err != nil {
		return signal.Signal{}, fmt.Errorf("get candles: %w", err)
	}

	return c.fetcher.Fetch(ctx, signal.Snapshot{
		Prices:  market.Closes(candles),
		Volumes: market.Volumes(candles),
	})
}

func (c *Controller) observeFetchError(err error) {
	if c.metrics == nil {
		return
	}
	stage := "other"
	switch {
	case errors.Is(err, signal.ErrConnect):
		stage = "connect"
	case errors.Is(err, signal.ErrSend):
		stage = "send"
	case errors.Is(err, signal.ErrRead):
		stage = "read"
	case errors.Is(err, signal.ErrParse):
		stage = "parse"
	}
	c.metrics.FetchFailures.WithLabelValues(stage).Inc()
}
