package service

import (
	"context"
	"errors"
	"testing"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/internal/app/market/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestListProducts_CacheHit(t *testing.T) {
	// Arrange
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockProductCache)
	service := NewCatalogService(productRepo, reviewRepo, cache)

	ctx := context.Background()
	cached := []entity.Product{{ID: uuid.New(), Name: "Молоко"}}

	cache.On("GetProducts", ctx).Return(cached, nil)

	// Act
	products, err := service.ListProducts(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, cached, products)
	productRepo.AssertNotCalled(t, "GetAll")
}

func TestListProducts_CacheMissFillsCache(t *testing.T) {
	// Arrange
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockProductCache)
	service := NewCatalogService(productRepo, reviewRepo, cache)

	ctx := context.Background()
	fromDB := []entity.Product{{ID: uuid.New(), Name: "Хлеб"}}

	cache.On("GetProducts", ctx).Return(nil, nil)
	productRepo.On("GetAll", ctx).Return(fromDB, nil)
	cache.On("SetProducts", ctx, fromDB, productsCacheTTL).Return(nil)

	// Act
	products, err := service.ListProducts(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, fromDB, products)
	cache.AssertExpectations(t)
}

func TestListProducts_CacheErrorFallsBackToDB(t *testing.T) {
	// Redis недоступен - каталог все равно отдается
	// Arrange
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockProductCache)
	service := NewCatalogService(productRepo, reviewRepo, cache)

	ctx := context.Background()
	fromDB := []entity.Product{{ID: uuid.New(), Name: "Сыр"}}

	cache.On("GetProducts", ctx).Return(nil, errors.New("connection refused"))
	productRepo.On("GetAll", ctx).Return(fromDB, nil)
	cache.On("SetProducts", ctx, fromDB, productsCacheTTL).Return(errors.New("connection refused"))

	// Act
	products, err := service.ListProducts(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, fromDB, products)
}

func TestGetProduct_WithReviews(t *testing.T) {
	// Arrange
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockProductCache)
	service := NewCatalogService(productRepo, reviewRepo, cache)

	ctx := context.Background()
	productID := uuid.New()

	productRepo.On("GetByID", ctx, productID).Return(&entity.Product{
		ID:   productID,
		Name: "Творог",
	}, nil)
	reviewRepo.On("GetByProductID", ctx, productID.String()).Return([]entity.Review{
		{ProductID: productID.String(), Rating: 5},
	}, nil)

	// Act
	resp, err := service.GetProduct(ctx, productID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Творог", resp.Name)
	assert.Len(t, resp.Reviews, 1)
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	productRepo := new(mocks.MockProductRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockProductCache)
	service := NewCatalogService(productRepo, reviewRepo, cache)

	ctx := context.Background()
	productID := uuid.New()

	productRepo.On("GetByID", ctx, productID).Return(nil, repository.ErrProductNotFound)

	// Act
	_, err := service.GetProduct(ctx, productID)

	// Assert
	assert.ErrorIs(t, err, ErrProductNotFound)
	reviewRepo.AssertNotCalled(t, "GetByProductID")
}
