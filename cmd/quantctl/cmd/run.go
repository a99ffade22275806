package cmd

import (
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmercier/quantctl/broker/sim"
	"github.com/rmercier/quantctl/config"
	"github.com/rmercier/quantctl/controller"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Paper-trade the controller against the scripted price sequence",
	Long: `Run drives the controller through the price steps configured under
"paper", using the in-memory broker. The signal backend must be reachable
at the configured address (default localhost:5555).`,
	RunE: runPaper,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	jnl, err := newJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer jnl.Close()

	params, limits, client, err := buildParams(cfg)
	if err != nil {
		return err
	}

	b := sim.New(cfg.Instrument)
	b.CommissionPerLot = cfg.Paper.CommissionPerLot

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	ctrl, err := controller.New(params, b, client, limits,
		controller.WithJournal(jnl),
		controller.WithMetrics(m),
		controller.WithLogger(log),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	steps := make([]config.PriceStep, 0, len(cfg.Paper.Steps)+1)
	steps = append(steps, config.PriceStep{Bid: cfg.Paper.InitialBid, Ask: cfg.Paper.InitialAsk})
	steps = append(steps, cfg.Paper.Steps...)

	log.Info().
		Str("instrument", cfg.Instrument).
		Str("backend", cfg.Signal.Addr).
		Int("steps", len(steps)).
		Msg("paper run starting")

	for _, step := range steps {
		delay, _ := step.ParseDelay()
		if delay > 0 {
			select {
			case <-ctx.Done():
				log.Info().Msg("interrupted")
				return nil
			case <-time.After(delay):
			}
		}

		tick := market.Tick{
			Instrument: cfg.Instrument,
			Time:       time.Now().UTC(),
			Bid:        step.Bid,
			Ask:        step.Ask,
		}
		b.Push(tick)
		if err := ctrl.OnTick(ctx, tick); err != nil {
			log.Warn().Err(err).Msg("tick handler error")
		}
	}

	log.Info().
		Float64("realized_pl", b.Realized()).
		Bool("trading_enabled", ctrl.TradingEnabled()).
		Msg("paper run finished")
	return nil
}
