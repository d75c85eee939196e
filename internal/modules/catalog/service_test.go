package catalog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/almadegranja/alma-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProducts(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]Product)
	return products, args.Error(1)
}

func (m *MockRepository) SaveProducts(ctx context.Context, products []Product) error {
	return m.Called(ctx, products).Error(0)
}

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestService(t *testing.T) (*service, Repository) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "products.json"))
	return &service{repo: repo, now: func() time.Time { return fixedNow }}, repo
}

func TestCreateProductQuesoFresco(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Title:       "Queso fresco",
		Description: "x",
		Category:    "quesos",
		Price:       float64(3500),
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryQuesos, p.Category)
	assert.Equal(t, 3500.0, p.Price)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, fixedNow, p.CreatedAt)
	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err)
}

func TestCreateThenList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{
		Title: "Miel", Description: "Miel floral", Category: "otros", Price: float64(5600),
	})
	require.NoError(t, err)

	created, err := svc.CreateProduct(ctx, CreateProductRequest{
		Title:       "  Huevos azules ",
		Description: "Docena de huevos de gallinas araucanas",
		Category:    "huevos de campo",
		Price:       "4800",
		Unit:        " docena ",
		ImageURL:    "https://res.cloudinary.com/alma/huevos.jpg",
		IsFeatured:  true,
	})
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	var matches []Product
	for _, p := range products {
		if p.Title == "Huevos azules" {
			matches = append(matches, p)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, *created, matches[0])
	assert.Equal(t, CategoryHuevosCampo, created.Category)
	assert.Equal(t, "docena", created.Unit)
	assert.Equal(t, 4800.0, created.Price)

	featured, err := svc.FeaturedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Product{*created}, featured)
}

func TestCreateProductValidation(t *testing.T) {
	valid := func() CreateProductRequest {
		return CreateProductRequest{Title: "Queso", Description: "d", Category: "quesos", Price: float64(1000)}
	}
	tests := []struct {
		name   string
		mutate func(*CreateProductRequest)
		field  string
		reason string
	}{
		{"MissingTitle", func(r *CreateProductRequest) { r.Title = nil }, "title", apperr.ReasonMissing},
		{"BlankTitle", func(r *CreateProductRequest) { r.Title = "   " }, "title", apperr.ReasonMissing},
		{"NumericTitle", func(r *CreateProductRequest) { r.Title = float64(3) }, "title", apperr.ReasonWrongType},
		{"MissingDescription", func(r *CreateProductRequest) { r.Description = "" }, "description", apperr.ReasonMissing},
		{"MissingCategory", func(r *CreateProductRequest) { r.Category = nil }, "category", apperr.ReasonMissing},
		{"MissingPrice", func(r *CreateProductRequest) { r.Price = nil }, "price", apperr.ReasonMissing},
		{"TextPrice", func(r *CreateProductRequest) { r.Price = "abc" }, "price", apperr.ReasonInvalid},
		{"EmptyPrice", func(r *CreateProductRequest) { r.Price = "" }, "price", apperr.ReasonInvalid},
		{"BoolPrice", func(r *CreateProductRequest) { r.Price = true }, "price", apperr.ReasonInvalid},
		{"InfinitePrice", func(r *CreateProductRequest) { r.Price = math.Inf(1) }, "price", apperr.ReasonInvalid},
		{"NaNPrice", func(r *CreateProductRequest) { r.Price = "NaN" }, "price", apperr.ReasonInvalid},
		{"NegativePrice", func(r *CreateProductRequest) { r.Price = float64(-1) }, "price", apperr.ReasonInvalid},
		{"NumericUnit", func(r *CreateProductRequest) { r.Unit = float64(250) }, "unit", apperr.ReasonWrongType},
		{"ObjectImageURL", func(r *CreateProductRequest) { r.ImageURL = map[string]any{} }, "imageUrl", apperr.ReasonWrongType},
		{"StringFeatured", func(r *CreateProductRequest) { r.IsFeatured = "true" }, "isFeatured", apperr.ReasonWrongType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo)
			req := valid()
			tt.mutate(&req)

			_, err := svc.CreateProduct(context.Background(), req)
			require.Error(t, err)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.reason, appErr.Reason)
			repo.AssertNotCalled(t, "GetProducts", mock.Anything)
			repo.AssertNotCalled(t, "SaveProducts", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProductOptionalDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Title: "Nueces", Description: "Nueces enteras", Category: "Frutos Secos", Price: 7000,
		Unit: "", ImageURL: nil, IsFeatured: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "", p.Unit)
	assert.Equal(t, "", p.ImageURL)
	assert.False(t, p.IsFeatured)
	assert.Equal(t, CategoryFrutosSecos, p.Category)
}

func TestCreateProductInvalidPriceLeavesCatalog(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveProducts(ctx, sampleProducts()))

	_, err := svc.CreateProduct(ctx, CreateProductRequest{
		Title: "Queso", Description: "d", Category: "quesos", Price: "abc",
	})
	require.Error(t, err)

	products, err := repo.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), products)
}

func TestCreateProductSaveFailureIsUpstream(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProducts", mock.Anything).Return([]Product{}, nil)
	repo.On("SaveProducts", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := NewService(repo).CreateProduct(context.Background(), CreateProductRequest{
		Title: "Queso", Description: "d", Category: "quesos", Price: 10,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	repo.AssertExpectations(t)
}

func TestDeleteProduct(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveProducts(ctx, sampleProducts()))

	require.NoError(t, svc.DeleteProduct(ctx, "1"))

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts()[1:], products)
}

func TestDeleteProductIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveProducts(ctx, sampleProducts()))

	require.NoError(t, svc.DeleteProduct(ctx, "does-not-exist"))
	require.NoError(t, svc.DeleteProduct(ctx, "1"))
	require.NoError(t, svc.DeleteProduct(ctx, "1"))

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleProducts()[1:], products)
}

func TestFeaturedProductsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	featured, err := svc.FeaturedProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, featured)
	assert.Empty(t, featured)
}

func TestListProductsReadFailure(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetProducts", mock.Anything).Return(nil, errors.New("malformed"))

	_, err := NewService(repo).ListProducts(context.Background())
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
