package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"PriceCast/internal/di"
	"PriceCast/internal/domain/models"
	"PriceCast/internal/repository"
	"PriceCast/pkg/config"
)

var (
	horizon int
	outDir  string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast TICKER",
	Short: "Forecast daily prices past the last observation and write them as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withTrainedModel(c, func(ctx context.Context, cfg *config.Config, rt *di.Runtime) error {
			ticker := args[0]
			points, ferr := rt.Predictor.ForecastSeries(ctx, ticker, horizon)
			var partial *models.ForecastError
			if ferr != nil && (!errors.As(ferr, &partial) || len(points) == 0) {
				return ferr
			}

			dir := outDir
			if dir == "" {
				dir = cfg.Data.ForecastDir
			}
			history, _ := rt.Predictor.Store().Series(ticker)
			path, err := repository.WriteForecastCSV(dir, ticker, history, points)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "wrote %d forecast points to %s\n", len(points), path)
			return ferr
		})
	},
}

func init() {
	addTrainFlags(forecastCmd)
	forecastCmd.Flags().IntVar(&horizon, "horizon", 30, "number of days to forecast")
	forecastCmd.Flags().StringVar(&outDir, "out", "", "output directory (config forecast_dir when empty)")
}
