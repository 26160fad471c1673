package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/pkg/logger"
	"greenbasket/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает бизнес-логику отзывов.
// Автор отзыва - аутентифицированный пользователь из JWT claims;
// свободное поле author из тела запроса не принимается.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	productRepo   repository.ProductRepository
	kafkaProducer MessagePublisher
}

// NewReviewService создает новый сервис отзывов
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	kafkaProducer MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		productRepo:   productRepo,
		kafkaProducer: kafkaProducer,
	}
}

// AddReview создает отзыв. Пара (товар, автор) уникальна:
// повторный отзыв отклоняется как конфликт, существующий не меняется.
func (s *ReviewService) AddReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID, username string, req *entity.AddReviewRequest) (*entity.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}

	existing, err := s.reviewRepo.GetByProductAndUser(ctx, productID.String(), userID.String())
	if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateReview
	}

	review := &entity.Review{
		ProductID: productID.String(),
		UserID:    userID.String(),
		Author:    username,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(req.Rating))

	s.publishEvent(ctx, entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	})

	return review, nil
}

// GetReviewsByProduct получает все отзывы товара
func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return reviews, nil
}

// UpdateReview обновляет отзыв аутентифицированного автора
func (s *ReviewService) UpdateReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByProductAndUser(ctx, productID.String(), userID.String())
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.Rating = req.Rating
	review.Comment = req.Comment

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.publishEvent(ctx, entity.ReviewEvent{
		EventType: "REVIEW_UPDATED",
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	})

	return review, nil
}

// DeleteReview удаляет отзыв аутентифицированного автора
func (s *ReviewService) DeleteReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID) error {
	if err := s.reviewRepo.Delete(ctx, productID.String(), userID.String()); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.publishEvent(ctx, entity.ReviewEvent{
		EventType: "REVIEW_DELETED",
		ProductID: productID.String(),
		UserID:    userID.String(),
		Timestamp: time.Now(),
	})

	return nil
}

func (s *ReviewService) publishEvent(ctx context.Context, event entity.ReviewEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, payload); err != nil {
		// Отзыв уже записан, проблемы с Kafka не критичны
		logger.Error().Err(err).Str("product_id", event.ProductID).Msg("failed to publish review event")
	}
}
