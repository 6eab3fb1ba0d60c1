package model

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ProductStore provides read access to the catalog.
type ProductStore interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
}

// ImageStorage holds product images addressed by object key.
type ImageStorage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Product is a catalog item.
type Product struct {
	ID          int64
	CategoryID  int64
	Category    string
	Name        string
	Description string
	Images      []string
	Price       float64
	CreatedAt   time.Time
}

// HasImage reports whether name is one of the product's images.
func (p Product) HasImage(name string) bool {
	for _, img := range p.Images {
		if img == name {
			return true
		}
	}
	return false
}

// ImageKey returns the object storage key of a product image.
func ImageKey(productID int64, name string) string {
	return fmt.Sprintf("products/%d/%s", productID, name)
}

// Tab selects how the catalog is presented when no search query is given.
type Tab string

const (
	TabHome        Tab = "home"
	TabBestSellers Tab = "best_sellers"
	TabNewReleases Tab = "new_releases"
)

// Tabs lists catalog tabs in display order.
var Tabs = []Tab{TabHome, TabBestSellers, TabNewReleases}

// Title returns the label shown for the tab.
func (t Tab) Title() string {
	switch t {
	case TabHome:
		return "Home"
	case TabBestSellers:
		return "🔥 Best Sellers"
	case TabNewReleases:
		return "New Releases"
	default:
		return string(t)
	}
}

// ParseTab converts a tab name to a Tab. An empty name selects the home tab.
func ParseTab(s string) (Tab, error) {
	if s == "" {
		return TabHome, nil
	}
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}
