package catalog

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned by a KVClient when the key holds no value.
var ErrKeyNotFound = errors.New("kv: key not found")

// KVClient is the minimal surface of a hosted key-value store.
type KVClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type kvRepo struct {
	client KVClient
	key    string
}

// NewKVRepository stores the whole catalog as one JSON array under key.
func NewKVRepository(client KVClient, key string) Repository {
	return &kvRepo{client: client, key: key}
}

func (r *kvRepo) GetProducts(ctx context.Context) ([]Product, error) {
	data, err := r.client.Get(ctx, r.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "kv get %q", r.key)
	}
	products, err := DecodeProducts(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse kv value %q", r.key)
	}
	return products, nil
}

func (r *kvRepo) SaveProducts(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	return errors.Wrapf(r.client.Set(ctx, r.key, data), "kv set %q", r.key)
}
