package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newIngredientsCommand() *cobra.Command {
	ingredientsCmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Ingredient catalog management",
	}
	ingredientsCmd.AddCommand(
		newIngredientsListCommand(),
		newIngredientsCreateCommand(),
		newIngredientsUpdateCommand(),
		newIngredientsDeleteCommand(),
	)
	return ingredientsCmd
}

func newIngredientsListCommand() *cobra.Command {
	var page int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaIngredients); guardErr != nil {
				return guardErr
			}

			ingredients, listErr := app.client.ListIngredients(ctx)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, pager.PageSize)
			for _, ingredient := range pager.Window(ingredients, page) {
				rows = append(rows, []string{
					strconv.FormatInt(ingredient.ID, 10),
					ingredient.Name,
					ingredient.Description,
				})
			}
			command.Print(render.Table([]string{"ID", "NAME", "DESCRIPTION"}, rows))

			paging := pager.New(len(ingredients))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(ingredients)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	return listCmd
}

// loadOptionalImage opens the image path when one was given. The caller
// must invoke the returned closer.
func loadOptionalImage(path string) (*adminapi.FilePart, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	parts, closeParts, openErr := openFileParts([]string{path})
	if openErr != nil {
		return nil, nil, openErr
	}
	return &parts[0], closeParts, nil
}

func newIngredientsCreateCommand() *cobra.Command {
	var name string
	var description string
	var imagePath string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an ingredient",
		RunE: func(command *cobra.Command, arguments []string) error {
			if name == "" {
				return fmt.Errorf("ingredients.create: --name is required")
			}
			image, closeImage, imageErr := loadOptionalImage(imagePath)
			if imageErr != nil {
				return imageErr
			}
			defer closeImage()

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaIngredients); guardErr != nil {
				return guardErr
			}

			ingredient, createErr := app.client.CreateIngredient(ctx, name, description, image)
			if createErr != nil {
				return createErr
			}
			command.Printf("ingredient %d created\n", ingredient.ID)
			return nil
		},
	}

	createCmd.Flags().StringVar(&name, "name", "", "Ingredient name")
	createCmd.Flags().StringVar(&description, "description", "", "Short description")
	createCmd.Flags().StringVar(&imagePath, "image", "", "Image file")
	return createCmd
}

func newIngredientsUpdateCommand() *cobra.Command {
	var name string
	var description string
	var imagePath string

	updateCmd := &cobra.Command{
		Use:   "update <ingredient-id>",
		Short: "Update an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			ingredientID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}
			image, closeImage, imageErr := loadOptionalImage(imagePath)
			if imageErr != nil {
				return imageErr
			}
			defer closeImage()

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaIngredients); guardErr != nil {
				return guardErr
			}

			ingredient, updateErr := app.client.UpdateIngredient(ctx, ingredientID, name, description, image)
			if updateErr != nil {
				return updateErr
			}
			command.Printf("ingredient %d updated\n", ingredient.ID)
			return nil
		},
	}

	updateCmd.Flags().StringVar(&name, "name", "", "Ingredient name")
	updateCmd.Flags().StringVar(&description, "description", "", "Short description")
	updateCmd.Flags().StringVar(&imagePath, "image", "", "Replacement image file")
	return updateCmd
}

func newIngredientsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ingredient-id>",
		Short: "Delete an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			ingredientID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaIngredients); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteIngredient(ctx, ingredientID); deleteErr != nil {
				return deleteErr
			}
			command.Println("ingredient deleted")
			return nil
		},
	}
}
