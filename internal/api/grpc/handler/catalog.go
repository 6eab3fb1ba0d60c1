package handler

import (
	"context"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
)

// CatalogService defines read operations on the product catalog.
type CatalogService interface {
	List(ctx context.Context, query string, tab model.Tab) ([]model.Product, error)
	Get(ctx context.Context, id int64) (model.Product, error)
}

// Catalog handles gRPC endpoints for the product catalog.
type Catalog struct {
	contract.UnimplementedCatalogServer
	catalogService CatalogService
	logger         *logger.Logger
}

var _ contract.CatalogServer = (*Catalog)(nil)

func NewCatalog(catalogService CatalogService, logger *logger.Logger) *Catalog {
	return &Catalog{catalogService: catalogService, logger: logger}
}

func (h *Catalog) ListProducts(ctx context.Context, req *contract.ListProductsRequest) (*contract.ListProductsResponse, error) {
	tab, err := model.ParseTab(req.Tab)
	if err != nil {
		return nil, handleError(apierror.NewErrValidation(err.Error()))
	}

	products, err := h.catalogService.List(ctx, req.Query, tab)
	if err != nil {
		return nil, handleError(err)
	}

	out := make([]*contract.Product, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}

	h.logger.Debug("Catalog handler: products listed",
		"tab", tab,
		"query", req.Query,
		"count", len(out))

	return &contract.ListProductsResponse{Products: out}, nil
}

func (h *Catalog) GetProduct(ctx context.Context, req *contract.GetProductRequest) (*contract.Product, error) {
	product, err := h.catalogService.Get(ctx, req.ID)
	if err != nil {
		return nil, handleError(err)
	}
	return toProduct(product), nil
}

func toProduct(p model.Product) *contract.Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &contract.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		Images:      images,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
}
