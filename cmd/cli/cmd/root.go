// Package cmd holds the pricecast command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PriceCast/internal/di"
	"PriceCast/internal/usecase"
	"PriceCast/pkg/config"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/util"
)

var (
	cfgFile  string
	dataPath string
	logLevel string

	trainTickers string
	testFraction float64
	seed         int64
)

var rootCmd = &cobra.Command{
	Use:   "pricecast",
	Short: "Next-day closing price forecaster",
	Long: `pricecast trains a random forest on daily OHLCV history and predicts
closing prices for the tickers it has seen.

Commands:
    train       fit a model and print hold-out metrics
    predict     price for one ticker on one date
    forecast    daily prices past the last observation, written as CSV
    import      load a CSV file into ClickHouse
`,
	SilenceUsage: true,
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "CSV file to read instead of the configured source")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level")

	rootCmd.AddCommand(trainCmd, predictCmd, forecastCmd, importCmd)
}

// loadConfig applies command line overrides on top of file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Data.Source = di.SourceCSV
		cfg.Data.CSVPath = dataPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func addTrainFlags(c *cobra.Command) {
	c.Flags().StringVar(&trainTickers, "tickers", "", "comma separated tickers to train on (all when empty)")
	c.Flags().Float64Var(&testFraction, "test-fraction", 0, "hold-out fraction (config value when 0)")
	c.Flags().Int64Var(&seed, "seed", 0, "random seed (config value when not set)")
}

func trainParams(c *cobra.Command, cfg *config.Config) usecase.TrainParams {
	p := usecase.TrainParams{
		TestFraction: cfg.Model.TestFraction,
		Seed:         cfg.Model.Seed,
	}
	if testFraction > 0 {
		p.TestFraction = testFraction
	}
	if c.Flags().Changed("seed") {
		p.Seed = seed
	}
	if tickers := util.SplitList(trainTickers); len(tickers) > 0 {
		p.Tickers = tickers
	}
	return p
}

// withTrainedModel loads the store, trains once and hands the runtime to fn.
func withTrainedModel(c *cobra.Command, fn func(ctx context.Context, cfg *config.Config, rt *di.Runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := di.InitializeRuntime(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			rt.Logger.Warn("close runtime failed", applogger.Error(cerr))
		}
	}()

	ctx := c.Context()
	if _, err := rt.Predictor.Train(ctx, trainParams(c, cfg)); err != nil {
		return err
	}
	return fn(ctx, cfg, rt)
}
