package catalog

import (
	"context"
	"net/http"

	"github.com/almadegranja/alma-backend/internal/config"
	"go.uber.org/zap"
)

// OpenRepository builds the storage backend selected by cfg. It runs once
// at startup; the returned close function releases the backend.
func OpenRepository(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Repository, func() error, error) {
	backend := cfg.Backend()
	log.Info("opening catalog storage", zap.String("backend", backend))

	var (
		client KVClient
		err    error
	)
	switch backend {
	case config.BackendREST:
		client = NewRESTKV(cfg.KVRestURL, cfg.KVRestToken, http.DefaultClient)
	case config.BackendPostgres:
		client, err = OpenPostgresKV(ctx, cfg.DatabaseURL)
	case config.BackendBolt:
		client, err = OpenBoltKV(cfg.BoltPath)
	default:
		return NewFileRepository(cfg.ProductsFile), func() error { return nil }, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return NewKVRepository(client, cfg.KVKey), client.Close, nil
}
