package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/pager"
	"github.com/amberleaf/teactl/internal/render"
)

func newTeasCommand() *cobra.Command {
	teasCmd := &cobra.Command{
		Use:   "teas",
		Short: "Tea catalog management",
	}
	teasCmd.AddCommand(
		newTeasListCommand(),
		newTeasShowCommand(),
		newTeasCreateCommand(),
		newTeasUpdateCommand(),
		newTeasDeleteCommand(),
		newTeasToggleCommand(),
	)
	return teasCmd
}

func newTeasListCommand() *cobra.Command {
	var page int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}

			teas, listErr := app.client.ListTeas(ctx)
			if listErr != nil {
				return listErr
			}

			rows := make([][]string, 0, pager.PageSize)
			for _, tea := range pager.Window(teas, page) {
				state := "inactive"
				if tea.IsActive {
					state = "active"
				}
				rows = append(rows, []string{
					strconv.FormatInt(tea.ID, 10),
					tea.Name,
					tea.Category,
					fmt.Sprintf("%d", len(tea.Packages)),
					state,
				})
			}
			command.Print(render.Table([]string{"ID", "NAME", "CATEGORY", "PACKAGES", "STATE"}, rows))

			paging := pager.New(len(teas))
			paging.SetPage(page)
			command.Println(render.PageLine(paging.Page(), paging.PageCount(), len(teas)))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "Page of results to show")
	return listCmd
}

func newTeasShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tea-id>",
		Short: "Show one tea with packages and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			teaID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}

			tea, getErr := app.client.GetTea(ctx, teaID)
			if getErr != nil {
				return getErr
			}

			command.Println(render.Summary("name", tea.Name))
			command.Println(render.Summary("slug", tea.Slug))
			command.Println(render.Summary("category", tea.Category))
			command.Println(render.Summary("active", strconv.FormatBool(tea.IsActive)))
			if tea.Description != "" {
				command.Println(render.Summary("description", tea.Description))
			}
			if len(tea.Packages) > 0 {
				rows := make([][]string, 0, len(tea.Packages))
				for _, teaPackage := range tea.Packages {
					rows = append(rows, []string{teaPackage.PackageName, fmt.Sprintf("%.2f", teaPackage.SellingPrice)})
				}
				command.Println()
				command.Print(render.Table([]string{"PACKAGE", "PRICE"}, rows))
			}
			for _, image := range tea.Images {
				marker := ""
				if image.IsMainImage {
					marker = " (main)"
				}
				command.Println(render.Summary("image", image.ImageURL+marker))
			}
			for index, step := range tea.Brewing {
				command.Println(render.Summary(fmt.Sprintf("brewing %d", index+1), step.Text))
			}
			return nil
		},
	}
}

// teaFlags collects the create/update inputs shared by both commands.
type teaFlags struct {
	name        string
	slug        string
	description string
	category    string
	packages    []string
	brewSteps   []string
	imagePaths  []string
	iconPaths   []string
	mainImage   int
}

func (flags *teaFlags) register(command *cobra.Command) {
	command.Flags().StringVar(&flags.name, "name", "", "Tea name")
	command.Flags().StringVar(&flags.slug, "slug", "", "URL slug")
	command.Flags().StringVar(&flags.description, "description", "", "Long description")
	command.Flags().StringVar(&flags.category, "category", "", "Catalog category")
	command.Flags().StringArrayVar(&flags.packages, "package", nil, "Pack size as name=price, repeatable")
	command.Flags().StringArrayVar(&flags.brewSteps, "brew-step", nil, "Brewing instruction text, repeatable")
	command.Flags().StringArrayVar(&flags.imagePaths, "image", nil, "Catalog photo file, repeatable")
	command.Flags().StringArrayVar(&flags.iconPaths, "brew-icon", nil, "Brewing icon file, one per step")
	command.Flags().IntVar(&flags.mainImage, "main-image", 0, "Index of the main photo")
}

func (flags *teaFlags) spec() (adminapi.TeaSpec, error) {
	spec := adminapi.TeaSpec{
		Name:        flags.name,
		Slug:        flags.slug,
		Description: flags.description,
		Category:    flags.category,
		MainImage:   flags.mainImage,
	}
	for _, raw := range flags.packages {
		parsed, parseErr := parsePackageFlag(raw)
		if parseErr != nil {
			return adminapi.TeaSpec{}, parseErr
		}
		spec.Packages = append(spec.Packages, parsed)
	}
	for _, text := range flags.brewSteps {
		spec.Brewing = append(spec.Brewing, adminapi.BrewingStep{Text: text})
	}
	return spec, nil
}

func parsePackageFlag(raw string) (adminapi.TeaPackage, error) {
	name, price, found := strings.Cut(raw, "=")
	if !found || name == "" {
		return adminapi.TeaPackage{}, fmt.Errorf("teas.package_flag: expected name=price, got %q", raw)
	}
	sellingPrice, priceErr := strconv.ParseFloat(price, 64)
	if priceErr != nil {
		return adminapi.TeaPackage{}, fmt.Errorf("teas.package_flag: %w", priceErr)
	}
	return adminapi.TeaPackage{PackageName: name, SellingPrice: sellingPrice}, nil
}

// openFileParts opens each path and returns the parts plus a closer for
// the underlying files.
func openFileParts(paths []string) ([]adminapi.FilePart, func(), error) {
	parts := make([]adminapi.FilePart, 0, len(paths))
	files := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, file := range files {
			_ = file.Close()
		}
	}
	for _, path := range paths {
		file, openErr := os.Open(path)
		if openErr != nil {
			closeAll()
			return nil, nil, fmt.Errorf("teas.open_file: %w", openErr)
		}
		files = append(files, file)
		parts = append(parts, adminapi.FilePart{Name: filepath.Base(path), Reader: file})
	}
	return parts, closeAll, nil
}

func newTeasCreateCommand() *cobra.Command {
	flags := &teaFlags{}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a catalog entry",
		RunE: func(command *cobra.Command, arguments []string) error {
			spec, specErr := flags.spec()
			if specErr != nil {
				return specErr
			}
			if spec.Name == "" {
				return fmt.Errorf("teas.create: --name is required")
			}

			images, closeImages, imagesErr := openFileParts(flags.imagePaths)
			if imagesErr != nil {
				return imagesErr
			}
			defer closeImages()
			icons, closeIcons, iconsErr := openFileParts(flags.iconPaths)
			if iconsErr != nil {
				return iconsErr
			}
			defer closeIcons()

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}

			tea, createErr := app.client.CreateTea(ctx, spec, images, icons)
			if createErr != nil {
				return createErr
			}
			command.Printf("tea %d created\n", tea.ID)
			return nil
		},
	}

	flags.register(createCmd)
	return createCmd
}

func newTeasUpdateCommand() *cobra.Command {
	flags := &teaFlags{}

	updateCmd := &cobra.Command{
		Use:   "update <tea-id>",
		Short: "Replace a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			teaID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}
			spec, specErr := flags.spec()
			if specErr != nil {
				return specErr
			}

			images, closeImages, imagesErr := openFileParts(flags.imagePaths)
			if imagesErr != nil {
				return imagesErr
			}
			defer closeImages()
			icons, closeIcons, iconsErr := openFileParts(flags.iconPaths)
			if iconsErr != nil {
				return iconsErr
			}
			defer closeIcons()

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}

			tea, updateErr := app.client.UpdateTea(ctx, teaID, spec, images, icons)
			if updateErr != nil {
				return updateErr
			}
			command.Printf("tea %d updated\n", tea.ID)
			return nil
		},
	}

	flags.register(updateCmd)
	return updateCmd
}

func newTeasDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tea-id>",
		Short: "Delete a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			teaID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.DeleteTea(ctx, teaID); deleteErr != nil {
				return deleteErr
			}
			command.Println("tea deleted")
			return nil
		},
	}
}

func newTeasToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <tea-id>",
		Short: "Flip a tea between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			teaID, parseErr := parseNumericID(arguments[0])
			if parseErr != nil {
				return parseErr
			}

			app, cleanup, loadErr := loadApp(command)
			if loadErr != nil {
				return loadErr
			}
			defer cleanup()

			ctx := command.Context()
			if guardErr := app.requireArea(ctx, command, areaTeas); guardErr != nil {
				return guardErr
			}

			isActive, toggleErr := app.client.ToggleTeaActive(ctx, teaID)
			if toggleErr != nil {
				return toggleErr
			}
			if isActive {
				command.Println("tea is now active")
			} else {
				command.Println("tea is now inactive")
			}
			return nil
		},
	}
}

func parseNumericID(raw string) (int64, error) {
	parsed, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("teactl.id: %q is not a numeric identifier", raw)
	}
	return parsed, nil
}
