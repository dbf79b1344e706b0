package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newCustomersCommand() *cobra.Command {
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Customer listing and deletion",
	}
	customersCmd.AddCommand(
		newCustomersListCommand(),
		newCustomersStatsCommand(),
		newCustomersDeleteCommand(),
	)
	return customersCmd
}

func newCustomersListCommand() *cobra.Command {
	var page int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaCustomers); guardErr != nil {
				return guardErr
			}

			customers, listErr := app.client.ListCustomers(ctx)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, pager.PageSize)
			for _, customer := range pager.Window(customers, page) {
				rows = append(rows, []string{
					customer.CustomerID,
					customer.Name,
					customer.Email,
					customer.PhoneNumber,
					fmt.Sprintf("%d", customer.OrderCount),
					fmt.Sprintf("%.2f", customer.TotalSpend),
					customer.Status,
				})
			}
			command.Print(render.Table([]string{"ID", "NAME", "EMAIL", "PHONE", "ORDERS", "SPEND", "STATUS"}, rows))

			paging := pager.New(len(customers))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(customers)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	return listCmd
}

func newCustomersStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show customer aggregates and monthly signups",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaCustomers); guardErr != nil {
				return guardErr
			}

			stats, statsErr := app.client.FetchCustomerStats(ctx)
			if statsErr != nil {
				return statsErr
			}
			command.Println(render.Summary("total customers", fmt.Sprintf("%d", stats.TotalCustomers)))
			command.Println(render.Summary("new this week", fmt.Sprintf("%d (%+.1f%%)", stats.NewCustomers, stats.PercentageChange)))

			monthly, monthlyErr := app.client.FetchMonthlyCustomers(ctx)
			if monthlyErr != nil {
				return monthlyErr
			}
			if len(monthly) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(monthly))
			for _, entry := range monthly {
				rows = append(rows, []string{entry.Month, fmt.Sprintf("%d", entry.Customers)})
			}
			command.Println()
			command.Print(render.Table([]string{"MONTH", "SIGNUPS"}, rows))
			return nil
		},
	}
}

func newCustomersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <customer-id>",
		Short: "Delete a customer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaCustomers); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteCustomer(ctx, arguments[0]); deleteErr != nil {
				return deleteErr
			}
			command.Println("customer deleted")
			return nil
		},
	}
}
