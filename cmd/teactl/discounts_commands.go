package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newDiscountsCommand() *cobra.Command {
	discountsCmd := &cobra.Command{
		Use:   "discounts",
		Short: "Promotional campaign management",
	}
	discountsCmd.AddCommand(
		newDiscountsListCommand(),
		newDiscountsCreateCommand(),
		newDiscountsToggleCommand(),
		newDiscountsDeleteCommand(),
	)
	return discountsCmd
}

func newDiscountsListCommand() *cobra.Command {
	var page int
	var status string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		RunE: func(command *cobra.Command, arguments []string) error {
			if status != "" && status != "active" && status != "inactive" {
				return fmt.Errorf("discounts.list: --status must be active or inactive")
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaDiscounts); guardErr != nil {
				return guardErr
			}

			discounts, listErr := app.client.ListDiscounts(ctx, status)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, pager.PageSize)
			for _, discount := range pager.Window(discounts, page) {
				scope := fmt.Sprintf("%d teas", len(discount.TeaIDs))
				if discount.AppliesToAllTeas() {
					scope = "all teas"
				}
				rows = append(rows, []string{
					strconv.FormatInt(discount.ID, 10),
					discount.Name,
					discount.Type,
					describeDiscountValue(discount),
					scope,
					discount.Status,
				})
			}
			command.Print(render.Table([]string{"ID", "NAME", "TYPE", "VALUE", "SCOPE", "STATUS"}, rows))

			paging := pager.New(len(discounts))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(discounts)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status: active or inactive")
	return listCmd
}

func describeDiscountValue(discount adminapi.Discount) string {
	switch discount.Type {
	case adminapi.DiscountTypeCouponCode:
		return fmt.Sprintf("%s %.0f%%", discount.Code, discount.DiscountPercentage)
	case adminapi.DiscountTypeDirectPercentage:
		return fmt.Sprintf("%.0f%%", discount.DiscountPercentage)
	case adminapi.DiscountTypeFlatPriceOff:
		return fmt.Sprintf("%.2f off", discount.FlatDiscountAmount)
	case adminapi.DiscountTypeBOGO:
		return fmt.Sprintf("buy %d get %d", discount.BuyQuantity, discount.GetQuantity)
	case adminapi.DiscountTypeCartValueOffer:
		return fmt.Sprintf("%.0f%% over %.2f", discount.DiscountPercentage, discount.MinCartValue)
	case adminapi.DiscountTypeFreeProduct:
		return discount.FreeProduct
	}
	return ""
}

func newDiscountsCreateCommand() *cobra.Command {
	var request adminapi.CreateDiscountRequest
	var teaIDs []int64
	var bannerPath string
	var thumbnailPath string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign",
		Long: "Create a campaign. Supported types: " + strings.Join([]string{
			adminapi.DiscountTypeCouponCode,
			adminapi.DiscountTypeDirectPercentage,
			adminapi.DiscountTypeFlatPriceOff,
			adminapi.DiscountTypeBOGO,
			adminapi.DiscountTypeCartValueOffer,
			adminapi.DiscountTypeFreeProduct,
		}, ", ") + ". Without --tea the campaign applies to the whole catalog.",
		RunE: func(command *cobra.Command, arguments []string) error {
			if request.Name == "" || request.Type == "" {
				return fmt.Errorf("discounts.create: --name and --type are required")
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaDiscounts); guardErr != nil {
				return guardErr
			}

			if bannerPath != "" {
				uploaded, uploadErr := uploadCampaignImage(command, app, bannerPath)
				if uploadErr != nil {
					return uploadErr
				}
				request.BannerImage = uploaded
			}
			if thumbnailPath != "" {
				uploaded, uploadErr := uploadCampaignImage(command, app, thumbnailPath)
				if uploadErr != nil {
					return uploadErr
				}
				request.ThumbnailImage = uploaded
			}
			request.TeaIDs = teaIDs

			discount, createErr := app.client.CreateDiscount(ctx, request)
			if createErr != nil {
				return createErr
			}
			command.Printf("discount %d created\n", discount.ID)
			return nil
		},
	}

	createCmd.Flags().StringVar(&request.Name, "name", "", "Campaign name")
	createCmd.Flags().StringVar(&request.Type, "type", "", "Campaign type")
	createCmd.Flags().StringVar(&request.Code, "code", "", "Coupon code")
	createCmd.Flags().Float64Var(&request.DiscountPercentage, "percentage", 0, "Discount percentage")
	createCmd.Flags().Float64Var(&request.FlatDiscountAmount, "flat-amount", 0, "Flat amount off")
	createCmd.Flags().IntVar(&request.BuyQuantity, "buy-quantity", 0, "Quantity to buy")
	createCmd.Flags().IntVar(&request.GetQuantity, "get-quantity", 0, "Quantity granted free")
	createCmd.Flags().Float64Var(&request.MinCartValue, "min-cart-value", 0, "Minimum cart value")
	createCmd.Flags().StringVar(&request.FreeProduct, "free-product", "", "Free product name")
	createCmd.Flags().StringVar(&request.StartDate, "start", "", "Start date, YYYY-MM-DD")
	createCmd.Flags().StringVar(&request.EndDate, "end", "", "End date, YYYY-MM-DD")
	createCmd.Flags().Int64SliceVar(&teaIDs, "tea", nil, "Tea IDs the campaign covers, repeatable")
	createCmd.Flags().StringVar(&bannerPath, "banner", "", "Banner image file to upload")
	createCmd.Flags().StringVar(&thumbnailPath, "thumbnail", "", "Thumbnail image file to upload")
	return createCmd
}

// uploadCampaignImage pushes a local file through the upload endpoint and
// returns the relative path the backend stored it under.
func uploadCampaignImage(command *cobra.Command, app *appContext, path string) (string, error) {
	parts, closeParts, openErr := openFileParts([]string{path})
	if openErr != nil {
		return "", openErr
	}
	defer closeParts()

	relativePath, uploadErr := app.client.UploadDiscountImage(command.Context(), parts[0])
	if uploadErr != nil {
		return "", uploadErr
	}
	return relativePath, nil
}

func newDiscountsToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <discount-id>",
		Short: "Flip a campaign between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			discountID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaDiscounts); guardErr != nil {
				return guardErr
			}
			if toggleErr := app.client.ToggleDiscountStatus(ctx, discountID); toggleErr != nil {
				return toggleErr
			}
			command.Println("discount toggled")
			return nil
		},
	}
}

func newDiscountsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <discount-id>",
		Short: "Delete a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			discountID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaDiscounts); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteDiscount(ctx, discountID); deleteErr != nil {
				return deleteErr
			}
			command.Println("discount deleted")
			return nil
		},
	}
}
