package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cacart/internal/apierror"
	"github.com/dtroode/cacart/internal/server"
	"github.com/dtroode/cacart/internal/testutil"
)

type fakeImages struct {
	content map[string]string
	err     error
}

func (f *fakeImages) OpenImage(_ context.Context, productID int64, name string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.content[name]
	if !ok || productID != 1 {
		return nil, apierror.NewErrImageNotFound(name)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestRouter(images ImageService, checks map[string]HealthChecker) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "cacart_test_total", Help: "test"}))
	return NewRouter(images, checks, reg, testutil.MakeNoopLogger())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     map[string]HealthChecker
		wantStatus int
		wantBody   healthResponse
	}{
		{
			name: "all healthy",
			checks: map[string]HealthChecker{
				"postgres": CheckFunc(func(context.Context) error { return nil }),
			},
			wantStatus: http.StatusOK,
			wantBody:   healthResponse{Status: "ok"},
		},
		{
			name: "dependency down",
			checks: map[string]HealthChecker{
				"postgres": CheckFunc(func(context.Context) error { return nil }),
				"minio":    CheckFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody: healthResponse{
				Status: "unavailable",
				Checks: map[string]string{"minio": "connection refused"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			newTestRouter(&fakeImages{}, tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(&fakeImages{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cacart_test_total")
}

func TestProductImage(t *testing.T) {
	t.Parallel()

	images := &fakeImages{content: map[string]string{"front.png": "PNGDATA"}}

	tests := []struct {
		name        string
		images      ImageService
		path        string
		wantStatus  int
		wantBody    string
		wantType    string
		wantErrBody string
	}{
		{
			name:       "streams image",
			images:     images,
			path:       "/products/1/images/front.png",
			wantStatus: http.StatusOK,
			wantBody:   "PNGDATA",
			wantType:   "image/png",
		},
		{
			name:        "unknown image",
			images:      images,
			path:        "/products/1/images/back.png",
			wantStatus:  http.StatusNotFound,
			wantErrBody: "image back.png not found",
		},
		{
			name:        "unknown product",
			images:      &fakeImages{err: apierror.NewErrProductNotFound(42)},
			path:        "/products/42/images/front.png",
			wantStatus:  http.StatusNotFound,
			wantErrBody: "product 42 not found",
		},
		{
			name:        "storage failure",
			images:      &fakeImages{err: errors.New("minio: timeout")},
			path:        "/products/1/images/front.png",
			wantStatus:  http.StatusInternalServerError,
			wantErrBody: "internal server error",
		},
		{
			name:       "non-numeric id does not route",
			images:     images,
			path:       "/products/abc/images/front.png",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			newTestRouter(tt.images, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.wantErrBody != "" {
				var got errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantErrBody, got.Error)
			}
		})
	}
}

func TestHTTPServer_StartStop(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := NewHTTPServer(newTestRouter(&fakeImages{}, nil), addr, time.Second)
	assert.Equal(t, addr, srv.Address())

	result := make(chan error, 1)
	go func() { result <- srv.Start(server.NewPlainListener()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-result)
}
