package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/pkg/logger"
	"greenbasket/pkg/metrics"

	"github.com/google/uuid"
)

// PurchaseService фиксирует покупки пользователя
type PurchaseService struct {
	purchaseRepo  repository.PurchaseRepository
	kafkaProducer MessagePublisher
}

// NewPurchaseService создает новый сервис покупок
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	kafkaProducer MessagePublisher,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:  purchaseRepo,
		kafkaProducer: kafkaProducer,
	}
}

// Purchase записывает купленные товары и очищает корзину.
// Запись покупок и очистка корзины - одна транзакция: если очистка
// не удалась, покупка не считается завершенной. Повторно купленные
// товары сливаются по семантике объединения множеств.
func (s *PurchaseService) Purchase(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	unique := make([]uuid.UUID, 0, len(productIDs))
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if err := s.purchaseRepo.Finalize(ctx, userID, unique); err != nil {
		return fmt.Errorf("failed to finalize purchase: %w", err)
	}

	metrics.PurchasesCompleted.Inc()

	event := entity.PurchaseEvent{
		EventType:  "PURCHASE_COMPLETED",
		UserID:     userID,
		ProductIDs: unique,
		Timestamp:  time.Now(),
	}

	if err := s.publishEvent(ctx, event); err != nil {
		// Покупка уже зафиксирована, проблемы с Kafka не критичны
		logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to publish purchase event")
	}

	return nil
}

// ListPurchased возвращает идентификаторы купленных товаров
func (s *PurchaseService) ListPurchased(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.purchaseRepo.ListProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}

	return ids, nil
}

func (s *PurchaseService) publishEvent(ctx context.Context, event entity.PurchaseEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	return s.kafkaProducer.PublishMessage(ctx, event.UserID.String(), payload)
}
