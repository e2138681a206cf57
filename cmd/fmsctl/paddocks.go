package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/fms/internal/domain/models"
)

var paddocksCmd = &cobra.Command{
	Use:   "paddocks",
	Short: "List paddocks with their pasture and occupying mob",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			date, err := a.farm.CurrentDate(ctx)
			if err != nil {
				return err
			}
			paddocks, err := a.farm.ListPaddocks(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Paddocks on %s\n\n", date.Format(models.DateLayout))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAREA\tDM/HA\tTOTAL DM\tMOB\tSTOCK")
			for _, p := range paddocks {
				mob := p.MobName
				if mob == "" {
					mob = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%.1f\t%.0f\t%.0f\t%s\t%d\n", p.ID, p.Name, p.Area, p.DMPerHa, p.TotalDM, mob, p.StockCount)
			}
			return w.Flush()
		})
	},
}
