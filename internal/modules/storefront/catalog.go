package storefront

import (
	"context"
	"slices"

	"github.com/almadegranja/alma-backend/internal/modules/catalog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CategoryAll selects every product in FilterByCategory.
const CategoryAll = "todos"

// Source is where the storefront reads the catalog from.
type Source interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	FeaturedProducts(ctx context.Context) ([]catalog.Product, error)
}

// State is the catalog as the storefront last saw it.
type State struct {
	Products []catalog.Product
	Featured []catalog.Product
	// FeaturedFromServer is false when Featured was derived locally.
	FeaturedFromServer bool
}

// Sync loads the catalog and the featured view concurrently. Neither
// failure empties the page: a failed catalog fetch yields an empty catalog,
// and a failed featured fetch falls back to filtering the catalog locally.
func Sync(ctx context.Context, src Source, log *zap.Logger) State {
	var (
		products, featured       []catalog.Product
		productsErr, featuredErr error
		g                        errgroup.Group
	)
	g.Go(func() error {
		products, productsErr = src.Products(ctx)
		return nil
	})
	g.Go(func() error {
		featured, featuredErr = src.FeaturedProducts(ctx)
		return nil
	})
	_ = g.Wait()

	var st State
	if productsErr != nil {
		log.Warn("catalog fetch failed", zap.Error(productsErr))
		products = nil
	}
	st.Products = normalizeAll(products)

	if featuredErr != nil {
		log.Warn("featured fetch failed, filtering catalog locally", zap.Error(featuredErr))
		st.Featured = catalog.Featured(st.Products)
		return st
	}
	st.Featured = normalizeAll(featured)
	st.FeaturedFromServer = true
	return st
}

// FeaturedView returns at most limit featured products; limit <= 0 means all.
func (s State) FeaturedView(limit int) []catalog.Product {
	if limit <= 0 || limit >= len(s.Featured) {
		return s.Featured
	}
	return s.Featured[:limit]
}

// FilterByCategory folds categories the same way the server does before
// comparing. "todos" keeps everything and "otros" keeps whatever is not one
// of the named categories.
func FilterByCategory(products []catalog.Product, selected string) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	if selected == CategoryAll {
		return append(out, products...)
	}
	want := catalog.NormalizeCategory(selected)
	named := []string{catalog.CategoryQuesos, catalog.CategoryFrutosSecos, catalog.CategoryHuevosCampo}
	for _, p := range products {
		got := catalog.NormalizeCategory(p.Category)
		if want == catalog.CategoryOtros {
			if !slices.Contains(named, got) {
				out = append(out, p)
			}
			continue
		}
		if got == want {
			out = append(out, p)
		}
	}
	return out
}

// normalizeAll folds categories of records that may carry legacy labels.
func normalizeAll(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		p.Category = catalog.NormalizeCategory(p.Category)
		out = append(out, p)
	}
	return out
}
