package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/talodu/marketplace-client/internal/core/domain"
)

// ImagesClient covers the /images/product endpoints.
type ImagesClient struct {
	c *Client
}

type imageEnvelope struct {
	Message string              `json:"message"`
	Image   domain.ProductImage `json:"image"`
}

// Upload sends one image for a product as multipart form data. The body
// is buffered up front so the retry transport can replay the request
// after a token refresh.
func (i *ImagesClient) Upload(ctx context.Context, productID uint, filename string, data []byte, altText string) (*domain.ProductImage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("client: build upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("client: build upload form: %w", err)
	}
	if altText != "" {
		if err := w.WriteField("alt_text", altText); err != nil {
			return nil, fmt.Errorf("client: build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("client: build upload form: %w", err)
	}

	var out imageEnvelope
	path := fmt.Sprintf("/images/product/%d", productID)
	if err := i.c.doBody(ctx, http.MethodPost, path, nil, w.FormDataContentType(), buf.Bytes(), &out); err != nil {
		return nil, err
	}
	return &out.Image, nil
}

// ListByProduct returns every image attached to a product.
func (i *ImagesClient) ListByProduct(ctx context.Context, productID uint) ([]domain.ProductImage, error) {
	var out struct {
		Images []domain.ProductImage `json:"images"`
	}
	path := fmt.Sprintf("/images/product/%d", productID)
	if err := i.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}

// SetPrimary marks one image as the product's primary image.
func (i *ImagesClient) SetPrimary(ctx context.Context, imageID uint) error {
	path := fmt.Sprintf("/images/product/%d/primary", imageID)
	return i.c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

// Delete removes a single image.
func (i *ImagesClient) Delete(ctx context.Context, imageID uint) error {
	path := fmt.Sprintf("/images/product/%d", imageID)
	return i.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// BatchDelete removes several product images in one call.
func (i *ImagesClient) BatchDelete(ctx context.Context, ids []uint) error {
	in := map[string][]uint{"ids": ids}
	return i.c.do(ctx, http.MethodDelete, "/products/images/delete/batch", nil, in, nil)
}
