package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
)

// Catalog serves products and their images.
type Catalog struct {
	products model.ProductStore
	images   model.ImageStorage
	logger   *logger.Logger
}

func NewCatalog(products model.ProductStore, images model.ImageStorage, logger *logger.Logger) *Catalog {
	return &Catalog{products: products, images: images, logger: logger}
}

// List returns the products to show. A non-empty query filters by a
// case-insensitive substring of the name and keeps store order; otherwise
// the tab decides the order.
func (c *Catalog) List(ctx context.Context, query string, tab model.Tab) ([]model.Product, error) {
	products, err := c.products.List(ctx)
	if err != nil {
		c.logger.Error("Catalog service: failed to list products",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if query != "" {
		return filterByName(products, query), nil
	}

	switch tab {
	case model.TabHome, model.TabBestSellers:
		return products, nil
	case model.TabNewReleases:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
		return products, nil
	default:
		return nil, apierror.NewErrValidation(fmt.Sprintf("unknown tab %q", tab))
	}
}

func (c *Catalog) Get(ctx context.Context, id int64) (model.Product, error) {
	product, err := c.products.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Product{}, apierror.NewErrProductNotFound(id)
	}
	if err != nil {
		c.logger.Error("Catalog service: failed to get product",
			"product_id", id,
			"error", err.Error())
		return model.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// OpenImage opens one of the product's images. Names not listed on the
// product are reported as missing without touching storage.
func (c *Catalog) OpenImage(ctx context.Context, id int64, name string) (io.ReadCloser, error) {
	product, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.HasImage(name) {
		return nil, apierror.NewErrImageNotFound(name)
	}

	rc, err := c.images.Download(ctx, model.ImageKey(id, name))
	if errors.Is(err, model.ErrNotFound) {
		c.logger.Warn("Catalog service: image listed but not stored",
			"product_id", id,
			"image", name)
		return nil, apierror.NewErrImageNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	return rc, nil
}

func filterByName(products []model.Product, query string) []model.Product {
	q := strings.ToLower(query)
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}
