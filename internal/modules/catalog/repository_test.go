package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryKV is an in-process KVClient.
type memoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
	setErr error
}

func newMemoryKV() *memoryKV { return &memoryKV{values: map[string][]byte{}} }

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memoryKV) Close() error { return nil }

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Category: CategoryQuesos, Title: "Queso fresco", Price: 3500,
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "2", Category: CategoryOtros, Title: "Miel", Price: 5600, Unit: "350g", IsFeatured: true},
	}
}

// testRepositoryContract runs the behaviour every backend shares.
func testRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()

	products, err := repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	require.NoError(t, repo.SaveProducts(ctx, sampleProducts()))
	got, err := repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), got)

	// Full replacement, not merge.
	require.NoError(t, repo.SaveProducts(ctx, sampleProducts()[1:]))
	got, err = repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts()[1:], got)

	again, err := repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "products.json")
	testRepositoryContract(t, NewFileRepository(path))
}

func TestFileRepositoryCreatesMissingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "products.json")
	repo := NewFileRepository(path)

	products, err := repo.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileRepositoryWritesPrettyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	repo := NewFileRepository(path)

	require.NoError(t, repo.SaveProducts(context.Background(), sampleProducts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"1\",")
}

func TestFileRepositoryNormalizesLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	legacy := `[{"id":"x1","name":"Almendras","category":"frutos secos","price":8000,"unit":"500g","active":true}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	products, err := NewFileRepository(path).GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Almendras", products[0].Title)
	assert.Equal(t, CategoryFrutosSecos, products[0].Category)
	assert.False(t, products[0].IsFeatured)
}

func TestFileRepositoryMalformedIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileRepository(path).GetProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")

	// The broken file is left alone.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestKVRepository(t *testing.T) {
	testRepositoryContract(t, NewKVRepository(newMemoryKV(), "products"))
}

func TestKVRepositoryUsesSingleKey(t *testing.T) {
	kv := newMemoryKV()
	repo := NewKVRepository(kv, "alma:products")

	require.NoError(t, repo.SaveProducts(context.Background(), sampleProducts()))

	assert.Len(t, kv.values, 1)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(kv.values["alma:products"], &stored))
	assert.Len(t, stored, 2)
}

func TestKVRepositoryPropagatesWriteError(t *testing.T) {
	kv := newMemoryKV()
	kv.setErr = io.ErrUnexpectedEOF

	err := NewKVRepository(kv, "products").SaveProducts(context.Background(), sampleProducts())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestKVRepositoryNormalizesLegacyValue(t *testing.T) {
	kv := newMemoryKV()
	kv.values["products"] = []byte(`[{"id":"1","name":"Huevos","category":"huevos de campo","price":"4200"}]`)

	products, err := NewKVRepository(kv, "products").GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Huevos", products[0].Title)
	assert.Equal(t, CategoryHuevosCampo, products[0].Category)
	assert.Equal(t, 4200.0, products[0].Price)
}

func TestBoltKVRepository(t *testing.T) {
	kv, err := OpenBoltKV(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	testRepositoryContract(t, NewKVRepository(kv, "products"))
}

// fakeRedisREST mimics the Upstash REST protocol for GET/SET.
func fakeRedisREST(t *testing.T, token string) *httptest.Server {
	var (
		mu     sync.Mutex
		values = map[string]string{}
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/get/{key}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		mu.Lock()
		v, ok := values[r.PathValue("key")]
		mu.Unlock()
		if !ok {
			_, _ = w.Write([]byte(`{"result":null}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": v})
	})
	mux.HandleFunc("POST /set/{key}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		values[r.PathValue("key")] = string(body)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"result":"OK"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRESTKVRepository(t *testing.T) {
	srv := fakeRedisREST(t, "kv-token")
	testRepositoryContract(t, NewKVRepository(NewRESTKV(srv.URL, "kv-token", srv.Client()), "products"))
}

func TestRESTKVRejectsBadToken(t *testing.T) {
	srv := fakeRedisREST(t, "kv-token")
	repo := NewKVRepository(NewRESTKV(srv.URL, "wrong", srv.Client()), "products")

	_, err := repo.GetProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	err = repo.SaveProducts(context.Background(), sampleProducts())
	assert.Error(t, err)
}
