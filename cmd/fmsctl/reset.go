package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/fms/internal/domain/models"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the seed paddocks, mobs, stock and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			date, err := a.farm.Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset to %s\n", date.Format(models.DateLayout))
			return nil
		})
	},
}
