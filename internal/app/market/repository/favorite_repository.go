package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type favoriteRepository struct {
	db *pgxpool.Pool
}

// NewFavoriteRepository создает новый репозиторий избранного
func NewFavoriteRepository(db *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add добавляет товар в избранное пользователя.
// Идемпотентен: ON CONFLICT DO NOTHING, повторное добавление
// возвращает added=false без ошибки.
func (r *favoriteRepository) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, userID, productID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Remove удаляет товар из избранного.
// Отсутствующий товар - ErrNotInFavorites, состояние не меняется.
func (r *favoriteRepository) Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`

	result, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotInFavorites
	}

	return nil
}

// ListProductIDs получает идентификаторы избранных товаров пользователя
func (r *favoriteRepository) ListProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return ids, nil
}
