package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/fms/internal/domain/models"
)

var advanceDays int

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance the simulated date",
	Long:  "Run the daily pasture step once per day requested. Each day commits on its own.",
	RunE:  runAdvance,
}

func init() {
	advanceCmd.Flags().IntVar(&advanceDays, "days", 1, "Number of days to advance")
}

func runAdvance(cmd *cobra.Command, args []string) error {
	if advanceDays < 1 {
		return errors.New("--days must be at least 1")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		for i := 0; i < advanceDays; i++ {
			date, err := a.sim.AdvanceOneDay(ctx)
			if err != nil {
				return fmt.Errorf("day %d of %d: %w", i+1, advanceDays, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "curr_date %s\n", date.Format(models.DateLayout))
		}
		return nil
	})
}
