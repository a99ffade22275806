package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rmercier/quantctl/config"
	"github.com/rmercier/quantctl/controller"
	"github.com/rmercier/quantctl/journal"
	"github.com/rmercier/quantctl/market"
	"github.com/rmercier/quantctl/risk"
	"github.com/rmercier/quantctl/signal"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quantctl",
	Short: "Signal-driven execution controller for an external quant analytics service",
	Long: `quantctl runs a tick-driven trading controller: on each price update it
evaluates a global risk kill-switch over the positions it owns, polls an
analytics backend over TCP/JSON for quantitative signals (z-score, regime,
ML probability, Kalman), and opens or flattens positions accordingly.

Commands:
  run      paper-trade against the scripted price sequence from the config
  replay   drive the controller through a CSV tick file
  journal  inspect the SQLite order journal`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if cfg.Format == "console" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return log, nil
}

func newJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.OrdersFile, cfg.SignalsFile, cfg.EventsFile)
	case "", "none":
		return journal.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}

func buildParams(cfg *config.Config) (controller.Params, risk.Limits, *signal.Client, error) {
	meta, ok := market.Instruments[cfg.Instrument]
	if !ok {
		return controller.Params{}, risk.Limits{}, nil, fmt.Errorf("unknown instrument %q", cfg.Instrument)
	}

	interval, err := cfg.Signal.ParseFetchInterval()
	if err != nil {
		return controller.Params{}, risk.Limits{}, nil, err
	}
	readTimeout, err := cfg.Signal.ParseReadTimeout()
	if err != nil {
		return controller.Params{}, risk.Limits{}, nil, err
	}

	client := signal.NewClient(cfg.Signal.Addr)
	client.ReadTimeout = readTimeout

	params := controller.Params{
		Instrument:      cfg.Instrument,
		Meta:            meta,
		Lots:            cfg.Trading.Lots,
		ZThreshold:      cfg.Trading.ZThreshold,
		MinRecoveryPips: cfg.Trading.MinRecoveryPips,
		MaxPositions:    cfg.Trading.MaxPositions,
		OwnerTag:        cfg.Trading.OwnerTag,
		FetchInterval:   interval,
		HistoryBars:     cfg.Signal.HistoryBars,
	}
	limits := risk.Limits{
		MaxLoss:   cfg.Trading.MaxLoss,
		MaxProfit: cfg.Trading.MaxProfit,
	}
	return params, limits, client, nil
}
