package service

import (
	"context"
	"testing"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/internal/app/market/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddReview_Success(t *testing.T) {
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	productRepo.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID}, nil)
	reviewRepo.On("GetByProductAndUser", ctx, productID.String(), userID.String()).
		Return(nil, repository.ErrReviewNotFound)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)
	publisher.On("PublishMessage", ctx, productID.String(), mock.Anything).Return(nil)

	req := &entity.AddReviewRequest{Rating: 5, Comment: "Отличный товар"}

	// Act
	review, err := service.AddReview(ctx, productID, userID, "ivan", req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, productID.String(), review.ProductID)
	assert.Equal(t, userID.String(), review.UserID)
	assert.Equal(t, "ivan", review.Author)
	assert.Equal(t, 5, review.Rating)
	reviewRepo.AssertExpectations(t)
}

func TestAddReview_DuplicateConflict(t *testing.T) {
	// Второй отзыв той же пары (товар, автор) отклоняется,
	// существующий отзыв не меняется
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	productRepo.On("GetByID", ctx, productID).Return(&entity.Product{ID: productID}, nil)
	reviewRepo.On("GetByProductAndUser", ctx, productID.String(), userID.String()).
		Return(&entity.Review{ProductID: productID.String(), UserID: userID.String(), Rating: 4}, nil)

	req := &entity.AddReviewRequest{Rating: 1, Comment: "передумал"}

	// Act
	_, err := service.AddReview(ctx, productID, userID, "ivan", req)

	// Assert
	assert.ErrorIs(t, err, ErrDuplicateReview)
	reviewRepo.AssertNotCalled(t, "Create")
	publisher.AssertNotCalled(t, "PublishMessage")
}

func TestAddReview_ProductNotFound(t *testing.T) {
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	productRepo.On("GetByID", ctx, productID).Return(nil, repository.ErrProductNotFound)

	// Act
	_, err := service.AddReview(ctx, productID, userID, "ivan", &entity.AddReviewRequest{Rating: 3})

	// Assert
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateReview_OnlyOwnReview(t *testing.T) {
	// Отзыв ищется по паре (товар, аутентифицированный автор):
	// чужой отзыв обновить невозможно
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	reviewRepo.On("GetByProductAndUser", ctx, productID.String(), userID.String()).
		Return(nil, repository.ErrReviewNotFound)

	// Act
	_, err := service.UpdateReview(ctx, productID, userID, &entity.UpdateReviewRequest{Rating: 2})

	// Assert
	assert.ErrorIs(t, err, ErrReviewNotFound)
	reviewRepo.AssertNotCalled(t, "Update")
}

func TestUpdateReview_Success(t *testing.T) {
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	existing := &entity.Review{
		ProductID: productID.String(),
		UserID:    userID.String(),
		Author:    "ivan",
		Rating:    4,
		Comment:   "неплохо",
	}

	reviewRepo.On("GetByProductAndUser", ctx, productID.String(), userID.String()).
		Return(existing, nil)
	reviewRepo.On("Update", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)
	publisher.On("PublishMessage", ctx, productID.String(), mock.Anything).Return(nil)

	// Act
	review, err := service.UpdateReview(ctx, productID, userID, &entity.UpdateReviewRequest{
		Rating:  2,
		Comment: "испортился",
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, review.Rating)
	assert.Equal(t, "испортился", review.Comment)
}

func TestDeleteReview_NotFound(t *testing.T) {
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()
	userID := uuid.New()

	reviewRepo.On("Delete", ctx, productID.String(), userID.String()).
		Return(repository.ErrReviewNotFound)

	// Act
	err := service.DeleteReview(ctx, productID, userID)

	// Assert
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestGetReviewsByProduct_Empty(t *testing.T) {
	// Arrange
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	publisher := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, publisher)

	ctx := context.Background()
	productID := uuid.New()

	reviewRepo.On("GetByProductID", ctx, productID.String()).
		Return([]entity.Review(nil), nil)

	// Act
	reviews, err := service.GetReviewsByProduct(ctx, productID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}
