package repository

import (
	"context"
	"errors"

	"greenbasket/internal/app/market/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetAll получает все товары
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetByIDs получает товары по списку идентификаторов.
// Используется для материализации избранного и корзины.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}

	var products []entity.Product
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// UpdateRating обновляет агрегаты рейтинга одного товара
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, avgRating float64, reviewsCount int) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"avg_rating":    avgRating,
			"reviews_count": reviewsCount,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// ResetRatings обнуляет агрегаты рейтинга всех товаров.
// Вызывается cron-джобой перед полным пересчётом, чтобы товары,
// потерявшие все отзывы, не сохранили устаревший рейтинг.
func (r *productRepository) ResetRatings(ctx context.Context) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("reviews_count > 0").
		Updates(map[string]interface{}{
			"avg_rating":    0,
			"reviews_count": 0,
		})

	return result.Error
}
