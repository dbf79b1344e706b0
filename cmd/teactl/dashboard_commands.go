package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/render"
)

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show aggregate sales and order metrics",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaDashboard); guardErr != nil {
				return guardErr
			}

			stats, statsErr := app.client.FetchDashboardStats(ctx)
			if statsErr != nil {
				return statsErr
			}
			command.Println(render.Summary("total sales", fmt.Sprintf("%.2f (%+.1f%%)", stats.TotalSales, stats.SalesChange)))
			command.Println(render.Summary("total orders", fmt.Sprintf("%d (%+.1f%%)", stats.TotalOrders, stats.OrdersChange)))
			command.Println(render.Summary("pending / cancelled", fmt.Sprintf("%d / %d", stats.PendingCount, stats.CancelledCount)))

			monthly, monthlyErr := app.client.FetchMonthlySales(ctx)
			if monthlyErr != nil {
				return monthlyErr
			}
			if len(monthly) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(monthly))
			for _, sale := range monthly {
				rows = append(rows, []string{sale.Month, fmt.Sprintf("%.2f", sale.TotalSales)})
			}
			command.Println()
			command.Print(render.Table([]string{"MONTH", "SALES"}, rows))
			return nil
		},
	}
}
