package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmercier/quantctl/broker/sim"
	"github.com/rmercier/quantctl/controller"
	"github.com/rmercier/quantctl/metrics"
	"github.com/rmercier/quantctl/replay"
)

var replayTicksPath string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Drive the controller through a CSV tick file",
	Long: `Replay reads ticks (time,bid,ask with time in RFC3339) from a CSV file
and feeds them through the controller against the in-memory broker. The
signal backend must be reachable for any fetch-eligible tick.`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayTicksPath, "ticks", "t", "", "path to tick CSV (required)")
	_ = replayCmd.MarkFlagRequired("ticks")
}

func runReplay(cmd *cobra.Command, args []string) error {
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

	ctrl, err := controller.New(params, b, client, limits,
		controller.WithJournal(jnl),
		controller.WithMetrics(metrics.New()),
		controller.WithLogger(log),
	)
	if err != nil {
		return err
	}

	feed, err := replay.NewCSVFeed(replayTicksPath, cfg.Instrument)
	if err != nil {
		return err
	}
	defer feed.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := replay.Run(ctx, feed, b, ctrl, log)
	if err != nil {
		return fmt.Errorf("replay stopped after %d ticks: %w", n, err)
	}

	log.Info().
		Int("ticks", n).
		Float64("realized_pl", b.Realized()).
		Bool("trading_enabled", ctrl.TradingEnabled()).
		Msg("replay finished")
	return nil
}
