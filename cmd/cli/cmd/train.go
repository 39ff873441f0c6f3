package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"PriceCast/internal/di"
	"PriceCast/pkg/config"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit a model and print hold-out metrics",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return withTrainedModel(c, func(_ context.Context, _ *config.Config, rt *di.Runtime) error {
			m := rt.Predictor.Model()
			info := m.Info()
			out := c.OutOrStdout()
			fmt.Fprintf(out, "model     %s\n", info.ID)
			fmt.Fprintf(out, "schema    %s (%d columns)\n", info.SchemaVersion, info.Columns)
			fmt.Fprintf(out, "tickers   %d\n", len(info.Tickers))
			if len(m.Skipped) > 0 {
				fmt.Fprintf(out, "skipped   %v\n", m.Skipped)
			}
			fmt.Fprintf(out, "rows      train=%d test=%d\n", info.Metrics.TrainRows, info.Metrics.TestRows)
			fmt.Fprintf(out, "MAE       %.6f\n", info.Metrics.MAE)
			fmt.Fprintf(out, "MSE       %.6f\n", info.Metrics.MSE)
			fmt.Fprintf(out, "RMSE      %.6f\n", info.Metrics.RMSE)
			fmt.Fprintf(out, "R2        %.6f\n", info.Metrics.R2)
			return nil
		})
	},
}

func init() {
	addTrainFlags(trainCmd)
}
