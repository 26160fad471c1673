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

// BasketService синхронизирует корзину пользователя с желаемым
// состоянием, присланным клиентом
type BasketService struct {
	basketRepo  repository.BasketRepository
	productRepo repository.ProductRepository
}

// NewBasketService создает новый сервис корзины
func NewBasketService(
	basketRepo repository.BasketRepository,
	productRepo repository.ProductRepository,
) *BasketService {
	return &BasketService{
		basketRepo:  basketRepo,
		productRepo: productRepo,
	}
}

// SyncBasket приводит сохраненную корзину к желаемому состоянию.
//
// 1. Желаемые позиции сворачиваются в map по product_id; дубликаты
//    внутри одного запроса разрешаются детерминированно - последняя
//    запись в payload выигрывает.
// 2. Позиции, отсутствующие во входе, удаляются; остальные
//    вставляются или обновляются.
// 3. Весь набор изменений применяется одной транзакцией: либо корзина
//    точно равна входу, либо не изменилась вовсе.
//
// Пустой список очищает корзину целиком.
func (s *BasketService) SyncBasket(ctx context.Context, userID uuid.UUID, desired []entity.BasketItemRequest) error {
	metrics.BasketItemsSynced.Observe(float64(len(desired)))

	order := make([]uuid.UUID, 0, len(desired))
	quantities := make(map[uuid.UUID]int, len(desired))
	for _, item := range desired {
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] = item.Quantity
	}

	existing, err := s.basketRepo.GetByUserID(ctx, userID)
	if err != nil {
		metrics.BasketSyncs.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to load basket: %w", err)
	}

	var deletes []uuid.UUID
	for _, item := range existing {
		if _, keep := quantities[item.ProductID]; !keep {
			deletes = append(deletes, item.ProductID)
		}
	}

	upserts := make([]entity.BasketItem, 0, len(order))
	for _, productID := range order {
		upserts = append(upserts, entity.BasketItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantities[productID],
		})
	}

	if err := s.basketRepo.Reconcile(ctx, userID, upserts, deletes); err != nil {
		metrics.BasketSyncs.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to reconcile basket: %w", err)
	}

	metrics.BasketSyncs.WithLabelValues("success").Inc()
	return nil
}

// GetBasket возвращает корзину с данными товаров (имя, цена, картинка)
func (s *BasketService) GetBasket(ctx context.Context, userID uuid.UUID) ([]entity.BasketItemResponse, error) {
	items, err := s.basketRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}

	if len(items) == 0 {
		return []entity.BasketItemResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket products: %w", err)
	}

	byID := make(map[uuid.UUID]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := make([]entity.BasketItemResponse, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Товар удален из каталога - позицию не показываем
			continue
		}
		result = append(result, entity.BasketItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
		})
	}

	return result, nil
}

// RemoveItem удаляет одну позицию корзины
func (s *BasketService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	if err := s.basketRepo.DeleteItem(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrBasketItemNotFound) {
			return ErrBasketItemNotFound
		}
		return fmt.Errorf("failed to remove basket item: %w", err)
	}
	return nil
}
