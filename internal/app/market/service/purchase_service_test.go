package service

import (
	"context"
	"errors"
	"testing"

	"greenbasket/internal/app/market/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPurchase_DeduplicatesProductIDs(t *testing.T) {
	// Повторы во входе сливаются с сохранением порядка
	// Arrange
	purchaseRepo := new(mocks.MockPurchaseRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewPurchaseService(purchaseRepo, publisher)

	ctx := context.Background()
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	purchaseRepo.On("Finalize", ctx, userID, []uuid.UUID{productA, productB}).Return(nil)
	publisher.On("PublishMessage", ctx, userID.String(), mock.Anything).Return(nil)

	// Act
	err := service.Purchase(ctx, userID, []uuid.UUID{productA, productB, productA})

	// Assert
	assert.NoError(t, err)
	purchaseRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPurchase_FinalizeError(t *testing.T) {
	// Если транзакция не прошла, событие не публикуется
	// Arrange
	purchaseRepo := new(mocks.MockPurchaseRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewPurchaseService(purchaseRepo, publisher)

	ctx := context.Background()
	userID := uuid.New()
	productA := uuid.New()

	purchaseRepo.On("Finalize", ctx, userID, []uuid.UUID{productA}).
		Return(errors.New("tx failed"))

	// Act
	err := service.Purchase(ctx, userID, []uuid.UUID{productA})

	// Assert
	assert.Error(t, err)
	publisher.AssertNotCalled(t, "PublishMessage")
}

func TestPurchase_KafkaFailureIsNotFatal(t *testing.T) {
	// Покупка уже зафиксирована, падение Kafka не ломает ответ
	// Arrange
	purchaseRepo := new(mocks.MockPurchaseRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewPurchaseService(purchaseRepo, publisher)

	ctx := context.Background()
	userID := uuid.New()
	productA := uuid.New()

	purchaseRepo.On("Finalize", ctx, userID, []uuid.UUID{productA}).Return(nil)
	publisher.On("PublishMessage", ctx, userID.String(), mock.Anything).
		Return(errors.New("broker unavailable"))

	// Act
	err := service.Purchase(ctx, userID, []uuid.UUID{productA})

	// Assert
	assert.NoError(t, err)
}

func TestListPurchased_Empty(t *testing.T) {
	// Arrange
	purchaseRepo := new(mocks.MockPurchaseRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewPurchaseService(purchaseRepo, publisher)

	ctx := context.Background()
	userID := uuid.New()

	purchaseRepo.On("ListProductIDs", ctx, userID).Return([]uuid.UUID(nil), nil)

	// Act
	ids, err := service.ListPurchased(ctx, userID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}
