package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newReviewsCommand() *cobra.Command {
	reviewsCmd := &cobra.Command{
		Use:   "reviews",
		Short: "Customer review moderation",
	}
	reviewsCmd.AddCommand(
		newReviewsListCommand(),
		newReviewsDeleteCommand(),
	)
	return reviewsCmd
}

func newReviewsListCommand() *cobra.Command {
	var page int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaReviews); guardErr != nil {
				return guardErr
			}

			reviews, listErr := app.client.ListReviews(ctx)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, pager.PageSize)
			for _, review := range pager.Window(reviews, page) {
				rows = append(rows, []string{
					strconv.FormatInt(review.ReviewID, 10),
					review.CustomerName,
					review.TeaName,
					review.OrderNumber,
					fmt.Sprintf("%d", review.Rating),
					review.ReviewText,
				})
			}
			command.Print(render.Table([]string{"ID", "CUSTOMER", "TEA", "ORDER", "RATING", "TEXT"}, rows))

			paging := pager.New(len(reviews))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(reviews)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	return listCmd
}

func newReviewsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			reviewID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaReviews); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteReview(ctx, reviewID); deleteErr != nil {
				return deleteErr
			}
			command.Println("review deleted")
			return nil
		},
	}
}
