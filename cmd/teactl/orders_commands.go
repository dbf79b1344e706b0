package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newOrdersCommand() *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Order lifecycle and shipment actions",
	}
	ordersCmd.AddCommand(
		newOrdersListCommand(),
		newOrdersSetStatusCommand(),
		newOrdersSetPaymentCommand(),
		newOrdersShipCommand(),
		newOrdersCancelShipmentCommand(),
		newOrdersLabelCommand(),
		newOrdersTrackCommand(),
	)
	return ordersCmd
}

func newOrdersListCommand() *cobra.Command {
	var page int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List orders with derived status counts",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaOrders); guardErr != nil {
				return guardErr
			}

			orders, listErr := app.client.ListOrders(ctx)
			if listErr != nil {
				return listErr
			}

			delivered, cancelled := 0, 0
			for _, order := range orders {
				switch order.Status {
				case adminapi.OrderStatusDelivered:
					delivered++
				case adminapi.OrderStatusCancelled:
					cancelled++
				}
			}
			inProgress := len(orders) - delivered - cancelled

			rows := make([][]string, 0, pager.PageSize)
			for _, order := range pager.Window(orders, page) {
				rows = append(rows, []string{
					order.OrderID,
					order.CustomerName,
					fmt.Sprintf("%.2f", order.TotalAmount),
					order.Status,
					order.PaymentStatus,
					order.ShipmentStatus,
				})
			}
			command.Print(render.Table([]string{"ORDER", "CUSTOMER", "TOTAL", "STATUS", "PAYMENT", "SHIPMENT"}, rows))

			paging := pager.New(len(orders))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(orders)))
			command.Println(render.Summary("in progress / delivered / cancelled",
				fmt.Sprintf("%d / %d / %d", inProgress, delivered, cancelled)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	return listCmd
}

// mutateOrder wraps the guard, the mutation, and the confirmation line
// shared by every order action.
func mutateOrder(action func(app *appContext, command *cobra.Command, orderID string) error) func(command *cobra.Command, arguments []string) error {
	return func(command *cobra.Command, arguments []string) error {
		app, cleanup, loadErr := loadApp(command)
		if loadErr != nil {
			return loadErr
		}
		defer cleanup()

		ctx := command.Context()
		if guardErr := app.requireArea(ctx, command, areaOrders); guardErr != nil {
			return guardErr
		}
		return action(app, command, arguments[0])
	}
}

func newOrdersSetStatusCommand() *cobra.Command {
	var status string

	statusCmd := &cobra.Command{
		Use:   "set-status <order-id>",
		Short: "Update an order's lifecycle status",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			if updateErr := app.client.UpdateOrderStatus(command.Context(), orderID, status); updateErr != nil {
				return updateErr
			}
			command.Println(render.Summary("order "+orderID, status))
			return nil
		}),
	}

	statusCmd.Flags().StringVar(&status, "status", adminapi.OrderStatusPending, "New status (Pending, Shipped, Delivered, Cancelled)")
	return statusCmd
}

func newOrdersSetPaymentCommand() *cobra.Command {
	var paymentStatus string

	paymentCmd := &cobra.Command{
		Use:   "set-payment <order-id>",
		Short: "Update an order's payment status",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			if updateErr := app.client.UpdatePaymentStatus(command.Context(), orderID, paymentStatus); updateErr != nil {
				return updateErr
			}
			command.Println(render.Summary("order "+orderID+" payment", paymentStatus))
			return nil
		}),
	}

	paymentCmd.Flags().StringVar(&paymentStatus, "payment", "Paid", "New payment status")
	return paymentCmd
}

func newOrdersShipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ship <order-id>",
		Short: "Book a shipment with the carrier",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			shipment, shipErr := app.client.CreateShipment(command.Context(), orderID)
			if shipErr != nil {
				return shipErr
			}
			command.Println(render.Summary("shipment created, AWB", shipment.AWB))
			return nil
		}),
	}
}

func newOrdersCancelShipmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-shipment <order-id>",
		Short: "Cancel an order's shipment",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			if cancelErr := app.client.CancelShipment(command.Context(), orderID); cancelErr != nil {
				return cancelErr
			}
			command.Println("shipment cancelled")
			return nil
		}),
	}
}

func newOrdersLabelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "label <order-id>",
		Short: "Print the shipping label URL",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			labelURL, labelErr := app.client.ShipmentLabel(command.Context(), orderID)
			if labelErr != nil {
				return labelErr
			}
			command.Println(labelURL)
			return nil
		}),
	}
}

func newOrdersTrackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "track <order-id>",
		Short: "Show carrier tracking history",
		Args:  cobra.ExactArgs(1),
		RunE: mutateOrder(func(app *appContext, command *cobra.Command, orderID string) error {
			tracking, trackErr := app.client.TrackShipment(command.Context(), orderID)
			if trackErr != nil {
				return trackErr
			}
			if len(tracking.ShipmentData) == 0 {
				command.Println("no tracking data")
				return nil
			}
			shipment := tracking.ShipmentData[0]
			command.Println(render.Summary("status", shipment.Status))
			rows := make([][]string, 0, len(shipment.Scans))
			for _, scan := range shipment.Scans {
				rows = append(rows, []string{scan.Time, scan.Location, scan.Status})
			}
			command.Print(render.Table([]string{"TIME", "LOCATION", "STATUS"}, rows))
			return nil
		}),
	}
}
