package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fxvar",
	Short: "Value-at-Risk for USD receivables settled in MAD",
	Long: `fxvar estimates how much a USD receivable can lose in MAD between the
invoice date and the settlement date.

It fits an EGARCH(1,1) model with Student-t innovations to daily USD/MAD
log returns, clamps the volatility into a configured plausibility band and
scales a one-day Student-t VaR to the settlement horizon.

It provides tools for:
  - Assessing a receivable from the command line or over HTTP
  - Recording market data snapshots and replaying them offline
  - Browsing the journal of past assessments`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when omitted")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// loadConfig reads --config and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Logger())
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("app", "fxvar"), logger.Time("started", time.Now())), nil
}
