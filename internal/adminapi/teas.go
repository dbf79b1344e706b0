package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// TeaPackage is one sellable pack size of a tea.
type TeaPackage struct {
	PackageName  string  `json:"package_name"`
	SellingPrice float64 `json:"selling_price"`
}

// TeaImage is one catalog photo; at most one carries the main flag.
type TeaImage struct {
	ImageURL    string `json:"image_url"`
	IsMainImage bool   `json:"is_main_image"`
}

// BrewingStep is one illustrated brewing instruction.
type BrewingStep struct {
	IconURL string `json:"icon_url"`
	Text    string `json:"text"`
}

// Tea is a catalog entry.
type Tea struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	IsActive    bool          `json:"is_active"`
	Packages    []TeaPackage  `json:"packages"`
	Images      []TeaImage    `json:"images"`
	Brewing     []BrewingStep `json:"brewing_instructions"`
}

// TeaSpec is the JSON part of the multipart create/update payload.
type TeaSpec struct {
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Packages    []TeaPackage  `json:"packages"`
	Brewing     []BrewingStep `json:"brewing_instructions,omitempty"`
	MainImage   int           `json:"main_image_index"`
}

// FilePart pairs a filename with its content for multipart uploads.
type FilePart struct {
	Name   string
	Reader io.Reader
}

type teasResponse struct {
	Success bool  `json:"success"`
	Teas    []Tea `json:"teas"`
}

type teaResponse struct {
	Success bool `json:"success"`
	Tea     Tea  `json:"tea"`
}

// ListTeas fetches the full tea catalog.
func (client *Client) ListTeas(ctx context.Context) ([]Tea, error) {
	var decoded teasResponse
	if err := client.do(ctx, "GET", "/tea", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Teas, nil
}

// GetTea fetches a single tea with its packages and images.
func (client *Client) GetTea(ctx context.Context, teaID int64) (Tea, error) {
	var decoded teaResponse
	if err := client.do(ctx, "GET", fmt.Sprintf("/tea/%d", teaID), nil, &decoded); err != nil {
		return Tea{}, err
	}
	return decoded.Tea, nil
}

// CreateTea creates a catalog entry. The spec travels as a JSON "data"
// part with image and brewing-icon files alongside.
func (client *Client) CreateTea(ctx context.Context, spec TeaSpec, images []FilePart, icons []FilePart) (Tea, error) {
	var decoded teaResponse
	err := client.doMultipart(ctx, "POST", "/tea", teaForm(spec, images, icons), &decoded)
	if err != nil {
		return Tea{}, err
	}
	return decoded.Tea, nil
}

// UpdateTea replaces a catalog entry with the same payload shape as create.
func (client *Client) UpdateTea(ctx context.Context, teaID int64, spec TeaSpec, images []FilePart, icons []FilePart) (Tea, error) {
	var decoded teaResponse
	err := client.doMultipart(ctx, "PUT", fmt.Sprintf("/tea/%d", teaID), teaForm(spec, images, icons), &decoded)
	if err != nil {
		return Tea{}, err
	}
	return decoded.Tea, nil
}

func teaForm(spec TeaSpec, images []FilePart, icons []FilePart) func(writer *multipart.Writer) error {
	return func(writer *multipart.Writer) error {
		encoded, encodeErr := json.Marshal(spec)
		if encodeErr != nil {
			return fmt.Errorf("api_client.tea.encode: %w", encodeErr)
		}
		if fieldErr := writer.WriteField("data", string(encoded)); fieldErr != nil {
			return fmt.Errorf("api_client.tea.form: %w", fieldErr)
		}
		if partsErr := writeFileParts(writer, "teaImages", images); partsErr != nil {
			return partsErr
		}
		return writeFileParts(writer, "brewingIcons", icons)
	}
}

func writeFileParts(writer *multipart.Writer, field string, parts []FilePart) error {
	for _, part := range parts {
		formFile, createErr := writer.CreateFormFile(field, part.Name)
		if createErr != nil {
			return fmt.Errorf("api_client.multipart.%s: %w", field, createErr)
		}
		if _, copyErr := io.Copy(formFile, part.Reader); copyErr != nil {
			return fmt.Errorf("api_client.multipart.%s: %w", field, copyErr)
		}
	}
	return nil
}

// DeleteTea removes a catalog entry.
func (client *Client) DeleteTea(ctx context.Context, teaID int64) error {
	return client.do(ctx, "DELETE", fmt.Sprintf("/tea/%d", teaID), nil, nil)
}

// ToggleTeaActive flips a tea's active flag. This is the one optimistic
// mutation: the caller patches its local copy and re-lists afterwards.
func (client *Client) ToggleTeaActive(ctx context.Context, teaID int64) (bool, error) {
	var decoded struct {
		Success  bool `json:"success"`
		IsActive bool `json:"is_active"`
	}
	if err := client.do(ctx, "PATCH", fmt.Sprintf("/tea/%d/toggle", teaID), nil, &decoded); err != nil {
		return false, err
	}
	return decoded.IsActive, nil
}
