package processor

import (
	"context"

	"greenbasket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RatingRecomputer пересчитывает рейтинги товаров
type RatingRecomputer interface {
	RecomputeAll(ctx context.Context) error
}

// RatingScheduler запускает полный пересчет рейтингов по расписанию.
// Событийный пересчет через Kafka покрывает свежие отзывы, cron
// выравнивает расхождения после сбоев консьюмера.
type RatingScheduler struct {
	cron      *cron.Cron
	ratingSvc RatingRecomputer
}

func NewRatingScheduler(ratingSvc RatingRecomputer) *RatingScheduler {
	return &RatingScheduler{
		cron:      cron.New(),
		ratingSvc: ratingSvc,
	}
}

func (s *RatingScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting rating scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		logger.Info().Msg("cron job triggered: recomputing product ratings")

		if err := s.ratingSvc.RecomputeAll(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled rating recompute failed")
			return
		}
		logger.Info().Msg("scheduled rating recompute finished")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *RatingScheduler) Stop() {
	logger.Info().Msg("stopping rating scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("rating scheduler stopped")
}

func (s *RatingScheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
