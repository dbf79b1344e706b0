package adminapi

import (
	"context"
	"mime/multipart"
)

type uploadResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RelativePath string `json:"relativePath"`
}

// UploadDiscountImage uploads a promotional image and returns the relative
// path the backend stored it under, for use in a discount's image fields.
func (client *Client) UploadDiscountImage(ctx context.Context, file FilePart) (string, error) {
	var decoded uploadResponse
	err := client.doMultipart(ctx, "POST", "/upload/discount", func(writer *multipart.Writer) error {
		return writeFileParts(writer, "file", []FilePart{file})
	}, &decoded)
	if err != nil {
		return "", err
	}
	return decoded.RelativePath, nil
}
