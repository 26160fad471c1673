package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/pkg/logger"

	"github.com/google/uuid"
)

const productsCacheTTL = 5 * time.Minute

// CatalogService отдает каталог товаров, прикрывая PostgreSQL
// Redis-кешем для списка
type CatalogService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	cache       ProductCache
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	cache ProductCache,
) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
	}
}

// ListProducts возвращает все товары. Сначала проверяется кеш;
// проблемы с Redis не фатальны - читаем из БД.
func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	cached, err := s.cache.GetProducts(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("product cache read failed, falling back to database")
	}
	if cached != nil {
		return cached, nil
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if err := s.cache.SetProducts(ctx, products, productsCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("product cache write failed")
	}

	return products, nil
}

// GetProduct возвращает товар вместе с его отзывами из MongoDB
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get product reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return &entity.ProductResponse{
		Product: *product,
		Reviews: reviews,
	}, nil
}
