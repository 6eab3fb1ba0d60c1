package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	servermocks "github.com/dtroode/cacart/internal/mocks"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/testutil"
)

func sampleProducts() []model.Product {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Product{
		{ID: 1, Name: "Classic Camera", Images: []string{"front.jpg"}, CreatedAt: base},
		{ID: 2, Name: "Instant camera", CreatedAt: base.Add(48 * time.Hour)},
		{ID: 3, Name: "Fisheye Lens", Images: []string{"fisheye.jpg"}, CreatedAt: base.Add(24 * time.Hour)},
	}
}

func names(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalog_List(t *testing.T) {
	tests := []struct {
		name  string
		query string
		tab   model.Tab
		want  []string
	}{
		{
			name: "home keeps store order",
			tab:  model.TabHome,
			want: []string{"Classic Camera", "Instant camera", "Fisheye Lens"},
		},
		{
			name: "best sellers keeps store order",
			tab:  model.TabBestSellers,
			want: []string{"Classic Camera", "Instant camera", "Fisheye Lens"},
		},
		{
			name: "new releases newest first",
			tab:  model.TabNewReleases,
			want: []string{"Instant camera", "Fisheye Lens", "Classic Camera"},
		},
		{
			name:  "query is case insensitive",
			query: "CAMERA",
			tab:   model.TabNewReleases,
			want:  []string{"Classic Camera", "Instant camera"},
		},
		{
			name:  "query without matches",
			query: "tripod",
			tab:   model.TabHome,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := servermocks.NewProductStore(t)
			store.On("List", context.Background()).Return(sampleProducts(), nil).Once()

			c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

			got, err := c.List(context.Background(), tt.query, tt.tab)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestCatalog_List_UnknownTab(t *testing.T) {
	store := servermocks.NewProductStore(t)
	store.On("List", context.Background()).Return(sampleProducts(), nil).Once()

	c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

	_, err := c.List(context.Background(), "", model.Tab("sale"))
	requireAPICode(t, err, codes.InvalidArgument)
}

func TestCatalog_List_StoreError(t *testing.T) {
	store := servermocks.NewProductStore(t)
	store.On("List", context.Background()).Return(nil, assert.AnError).Once()

	c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

	_, err := c.List(context.Background(), "", model.TabHome)
	require.ErrorIs(t, err, assert.AnError)
}

func TestCatalog_Get(t *testing.T) {
	ctx := context.Background()
	store := servermocks.NewProductStore(t)
	store.On("GetByID", ctx, int64(1)).Return(sampleProducts()[0], nil).Once()
	store.On("GetByID", ctx, int64(42)).Return(model.Product{}, model.ErrNotFound).Once()

	c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

	p, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Classic Camera", p.Name)

	_, err = c.Get(ctx, 42)
	apiErr := requireAPICode(t, err, codes.NotFound)
	assert.Equal(t, "product 42 not found", apiErr.Message)
}

func TestCatalog_OpenImage(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads listed image", func(t *testing.T) {
		store := servermocks.NewProductStore(t)
		images := servermocks.NewImageStorage(t)
		store.On("GetByID", ctx, int64(3)).Return(sampleProducts()[2], nil).Once()
		images.On("Download", ctx, "products/3/fisheye.jpg").Return(io.NopCloser(strings.NewReader("jpeg")), nil).Once()

		c := NewCatalog(store, images, testutil.MakeNoopLogger())

		rc, err := c.OpenImage(ctx, 3, "fisheye.jpg")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", string(data))
	})

	t.Run("unlisted name never reaches storage", func(t *testing.T) {
		store := servermocks.NewProductStore(t)
		store.On("GetByID", ctx, int64(3)).Return(sampleProducts()[2], nil).Once()

		c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

		_, err := c.OpenImage(ctx, 3, "../../etc/passwd")
		requireAPICode(t, err, codes.NotFound)
	})

	t.Run("listed but missing in storage", func(t *testing.T) {
		store := servermocks.NewProductStore(t)
		images := servermocks.NewImageStorage(t)
		store.On("GetByID", ctx, int64(1)).Return(sampleProducts()[0], nil).Once()
		images.On("Download", ctx, "products/1/front.jpg").Return(nil, model.ErrNotFound).Once()

		c := NewCatalog(store, images, testutil.MakeNoopLogger())

		_, err := c.OpenImage(ctx, 1, "front.jpg")
		requireAPICode(t, err, codes.NotFound)
	})

	t.Run("unknown product", func(t *testing.T) {
		store := servermocks.NewProductStore(t)
		store.On("GetByID", ctx, int64(9)).Return(model.Product{}, model.ErrNotFound).Once()

		c := NewCatalog(store, servermocks.NewImageStorage(t), testutil.MakeNoopLogger())

		_, err := c.OpenImage(ctx, 9, "front.jpg")
		requireAPICode(t, err, codes.NotFound)
	})
}
