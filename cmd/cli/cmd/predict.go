package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"PriceCast/internal/di"
	"PriceCast/pkg/config"
)

var predictCmd = &cobra.Command{
	Use:   "predict TICKER DATE",
	Short: "Price for one ticker on one date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return withTrainedModel(c, func(ctx context.Context, _ *config.Config, rt *di.Runtime) error {
			p, err := rt.Predictor.PredictPriceISO(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			source := "predicted"
			if p.Actual {
				source = "actual"
			}
			fmt.Fprintf(c.OutOrStdout(), "%s %s %.6f (%s)\n", p.Ticker, p.Date.Format("2006-01-02"), p.Price, source)
			return nil
		})
	},
}

func init() {
	addTrainFlags(predictCmd)
}
