package service

import (
	"context"
	"errors"
	"fmt"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/pkg/metrics"

	"github.com/google/uuid"
)

// FavoriteService управляет избранными товарами пользователя
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

// NewFavoriteService создает новый сервис избранного
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

// Add добавляет товар в избранное. Повторное добавление не ошибка:
// added=false отличает "уже в избранном" от "добавлен".
func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (added bool, err error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("failed to check product: %w", err)
	}

	added, err = s.favoriteRepo.Add(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	if added {
		metrics.FavoritesAdded.WithLabelValues("added").Inc()
	} else {
		metrics.FavoritesAdded.WithLabelValues("already_present").Inc()
	}

	return added, nil
}

// Remove удаляет товар из избранного.
// Отсутствие товара в избранном - структурная ошибка NotFound.
func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	if err := s.favoriteRepo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrNotInFavorites) {
			return ErrNotInFavorites
		}
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// List возвращает полные записи избранных товаров, не только идентификаторы
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]entity.Product, error) {
	ids, err := s.favoriteRepo.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite products: %w", err)
	}

	if products == nil {
		products = []entity.Product{}
	}

	return products, nil
}
