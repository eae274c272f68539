package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-attribution/dataio"
	"github.com/aouyang1/go-attribution/timedataset"
	"github.com/spf13/cobra"
)

var (
	simulateOut    string
	simulatePoints int
	simulateSeed   uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a synthetic weekly marketing dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := timedataset.NewDefaultSimulateOptions()
		opt.NumPoints = simulatePoints
		opt.Seed = simulateSeed

		tbl, err := timedataset.Simulate(opt)
		if err != nil {
			return err
		}
		if err := dataio.WriteTable(simulateOut, tbl); err != nil {
			return err
		}
		slog.Info("simulated dataset", "path", simulateOut, "rows", tbl.Len(), "columns", tbl.Columns())
		fmt.Fprintf(os.Stdout, "Wrote %d rows to: %s\n", tbl.Len(), simulateOut)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOut, "out", "data/simulated.csv", "output path, .csv or .parquet")
	simulateCmd.Flags().IntVar(&simulatePoints, "points", timedataset.DefaultSimulatedPoints, "number of weekly rows")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 42, "random seed")
}
