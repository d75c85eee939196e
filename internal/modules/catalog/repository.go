package catalog

import "context"

// Repository persists the whole catalog. Writes replace the stored list;
// there is no locking, so concurrent writers race and the last one wins.
type Repository interface {
	GetProducts(ctx context.Context) ([]Product, error)
	SaveProducts(ctx context.Context, products []Product) error
}
