package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов.
// Создает уникальный индекс по (product_id, user_id) - инвариант
// "один отзыв на товар от одного автора" держит сама коллекция,
// и индекс по product_id для выборки отзывов товара.
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uniqueIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetName("product_user_unique_idx").SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, uniqueIndex); err != nil {
		// Индекс может уже существовать
		logger.Warn().Err(err).Msg("failed to create unique review index")
	}

	productIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
		},
		Options: options.Index().SetName("product_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, productIndex); err != nil {
		logger.Warn().Err(err).Msg("failed to create product_id review index")
	}

	return &reviewRepository{
		collection: collection,
	}
}

// Create создает новый отзыв
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByProductID получает все отзывы товара, новые первыми
func (r *reviewRepository) GetByProductID(ctx context.Context, productID string) ([]entity.Review, error) {
	filter := bson.M{"product_id": productID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// GetByProductAndUser получает отзыв пары (товар, автор).
// Используется проверкой дубликатов перед созданием.
func (r *reviewRepository) GetByProductAndUser(ctx context.Context, productID string, userID string) (*entity.Review, error) {
	filter := bson.M{"product_id": productID, "user_id": userID}

	var review entity.Review
	err := r.collection.FindOne(ctx, filter).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// Update обновляет рейтинг и комментарий отзыва по паре (товар, автор)
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	filter := bson.M{"product_id": review.ProductID, "user_id": review.UserID}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв по паре (товар, автор)
func (r *reviewRepository) Delete(ctx context.Context, productID string, userID string) error {
	filter := bson.M{"product_id": productID, "user_id": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// AggregateByProduct считает средний рейтинг и число отзывов одного товара
func (r *reviewRepository) AggregateByProduct(ctx context.Context, productID string) (*entity.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$product_id",
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var results []entity.RatingAggregate
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	if len(results) == 0 {
		// Отзывов не осталось - агрегат нулевой
		return &entity.RatingAggregate{ProductID: productID}, nil
	}

	return &results[0], nil
}

// AggregateAll считает агрегаты рейтинга по всем товарам с отзывами
func (r *reviewRepository) AggregateAll(ctx context.Context) ([]entity.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        "$product_id",
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var results []entity.RatingAggregate
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	return results, nil
}
