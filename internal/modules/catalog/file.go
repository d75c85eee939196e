package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type fileRepo struct{ path string }

// NewFileRepository stores the catalog as a pretty-printed JSON array at path.
func NewFileRepository(path string) Repository { return &fileRepo{path: path} }

func (r *fileRepo) GetProducts(ctx context.Context) ([]Product, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		// First read creates the store.
		if err := r.SaveProducts(ctx, []Product{}); err != nil {
			return nil, err
		}
		return []Product{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", r.path)
	}
	products, err := DecodeProducts(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", r.path)
	}
	return products, nil
}

func (r *fileRepo) SaveProducts(_ context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", r.path)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", r.path)
	}
	return nil
}
