package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"PriceCast/internal/di"
	"PriceCast/internal/repository"
	applogger "PriceCast/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a CSV file of daily observations into ClickHouse",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := di.ProvideLogger(cfg)
		if err != nil {
			return err
		}

		src := repository.NewCSVObservationSource(args[0])
		src.SetLogger(l)
		obs, err := src.Load(c.Context())
		if err != nil {
			return err
		}

		ch, err := di.NewClickHouseClient(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := ch.Close(); cerr != nil {
				l.Warn("close clickhouse failed", applogger.Error(cerr))
			}
		}()

		dst := repository.NewCHObservationSource(ch, di.ObservationTable(cfg))
		dst.SetLogger(l)
		if err := dst.StoreBatch(c.Context(), obs); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "imported %d observations into %s\n", len(obs), di.ObservationTable(cfg))
		return nil
	},
}
