package service

import (
	"context"
	"errors"
	"fmt"

	"greenbasket/internal/app/market/repository"
	"greenbasket/pkg/logger"
	"greenbasket/pkg/metrics"

	"github.com/google/uuid"
)

// RatingService пересчитывает агрегаты рейтинга товаров по отзывам
type RatingService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	cache       ProductCache
}

// NewRatingService создает новый сервис рейтингов
func NewRatingService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	cache ProductCache,
) *RatingService {
	return &RatingService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		cache:       cache,
	}
}

// RecomputeProduct пересчитывает рейтинг одного товара.
// trigger - источник пересчета (event или cron) для метрик.
func (s *RatingService) RecomputeProduct(ctx context.Context, productID uuid.UUID, trigger string) error {
	agg, err := s.reviewRepo.AggregateByProduct(ctx, productID.String())
	if err != nil {
		metrics.RatingRecomputes.WithLabelValues(trigger, "failed").Inc()
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	if err := s.productRepo.UpdateRating(ctx, productID, agg.AvgRating, agg.Count); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			// Товар удален из каталога, пересчитывать нечего
			metrics.RatingRecomputes.WithLabelValues(trigger, "skipped").Inc()
			return nil
		}
		metrics.RatingRecomputes.WithLabelValues(trigger, "failed").Inc()
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	s.invalidateCache(ctx)

	metrics.RatingRecomputes.WithLabelValues(trigger, "success").Inc()
	logger.Debug().
		Str("product_id", productID.String()).
		Float64("avg_rating", agg.AvgRating).
		Int("reviews_count", agg.Count).
		Msg("product rating recomputed")

	return nil
}

// RecomputeAll сбрасывает и пересчитывает рейтинги всех товаров
func (s *RatingService) RecomputeAll(ctx context.Context) error {
	if err := s.productRepo.ResetRatings(ctx); err != nil {
		metrics.RatingRecomputes.WithLabelValues("cron", "failed").Inc()
		return fmt.Errorf("failed to reset ratings: %w", err)
	}

	aggregates, err := s.reviewRepo.AggregateAll(ctx)
	if err != nil {
		metrics.RatingRecomputes.WithLabelValues("cron", "failed").Inc()
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	var applied int
	for _, agg := range aggregates {
		productID, err := uuid.Parse(agg.ProductID)
		if err != nil {
			logger.Warn().Str("product_id", agg.ProductID).Msg("skipping review aggregate with bad product id")
			continue
		}

		if err := s.productRepo.UpdateRating(ctx, productID, agg.AvgRating, agg.Count); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				// Отзывы остались, а товара уже нет
				continue
			}
			metrics.RatingRecomputes.WithLabelValues("cron", "failed").Inc()
			return fmt.Errorf("failed to update product rating: %w", err)
		}
		applied++
	}

	s.invalidateCache(ctx)

	metrics.RatingRecomputes.WithLabelValues("cron", "success").Inc()
	logger.Info().Int("products_updated", applied).Msg("full rating recompute finished")

	return nil
}

func (s *RatingService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeleteProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate product cache")
	}
}
