package adminapi

import (
	"context"
	"fmt"
	"mime/multipart"
)

// Ingredient is a catalog entry describing what goes into a tea.
type Ingredient struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type ingredientsResponse struct {
	Success     bool         `json:"success"`
	Ingredients []Ingredient `json:"ingredients"`
}

type ingredientResponse struct {
	Success    bool       `json:"success"`
	Ingredient Ingredient `json:"ingredient"`
}

// ListIngredients fetches the ingredient catalog.
func (client *Client) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	var decoded ingredientsResponse
	if err := client.do(ctx, "GET", "/ingredients", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Ingredients, nil
}

// CreateIngredient creates an entry; name and description are form fields
// with an optional image file, matching the backend's multipart contract.
func (client *Client) CreateIngredient(ctx context.Context, name string, description string, image *FilePart) (Ingredient, error) {
	var decoded ingredientResponse
	err := client.doMultipart(ctx, "POST", "/ingredients", ingredientForm(name, description, image), &decoded)
	if err != nil {
		return Ingredient{}, err
	}
	return decoded.Ingredient, nil
}

// UpdateIngredient updates an entry with the same payload shape as create.
func (client *Client) UpdateIngredient(ctx context.Context, ingredientID int64, name string, description string, image *FilePart) (Ingredient, error) {
	var decoded ingredientResponse
	err := client.doMultipart(ctx, "PUT", fmt.Sprintf("/ingredients/%d", ingredientID), ingredientForm(name, description, image), &decoded)
	if err != nil {
		return Ingredient{}, err
	}
	return decoded.Ingredient, nil
}

func ingredientForm(name string, description string, image *FilePart) func(writer *multipart.Writer) error {
	return func(writer *multipart.Writer) error {
		if fieldErr := writer.WriteField("name", name); fieldErr != nil {
			return fmt.Errorf("api_client.ingredient.form: %w", fieldErr)
		}
		if fieldErr := writer.WriteField("description", description); fieldErr != nil {
			return fmt.Errorf("api_client.ingredient.form: %w", fieldErr)
		}
		if image == nil {
			return nil
		}
		return writeFileParts(writer, "image", []FilePart{*image})
	}
}

// DeleteIngredient removes an entry.
func (client *Client) DeleteIngredient(ctx context.Context, ingredientID int64) error {
	return client.do(ctx, "DELETE", fmt.Sprintf("/ingredients/%d", ingredientID), nil, nil)
}
