// Package rest serves the operational HTTP endpoints of the shop backend:
// health, prometheus metrics and product images.
package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/cacart/internal/logger"
)

// ImageService streams product images.
type ImageService interface {
	OpenImage(ctx context.Context, productID int64, name string) (io.ReadCloser, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// NewRouter registers the operational routes.
func NewRouter(
	images ImageService,
	checks map[string]HealthChecker,
	gatherer prometheus.Gatherer,
	logger *logger.Logger,
) *mux.Router {
	h := &handlers{images: images, checks: checks, logger: logger}

	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}/images/{name}", h.productImage).Methods(http.MethodGet)

	return r
}
