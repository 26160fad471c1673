package repository

import (
	"context"
	"fmt"
	"time"

	"greenbasket/internal/app/market/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type basketRepository struct {
	db *pgxpool.Pool
}

// NewBasketRepository создает новый репозиторий корзины
func NewBasketRepository(db *pgxpool.Pool) BasketRepository {
	return &basketRepository{db: db}
}

// GetByUserID получает все позиции корзины пользователя
func (r *basketRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.BasketItem, error) {
	query := `
		SELECT user_id, product_id, quantity, updated_at
		FROM basket_items
		WHERE user_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket items: %w", err)
	}
	defer rows.Close()

	var items []entity.BasketItem
	for rows.Next() {
		var item entity.BasketItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating basket items: %w", err)
	}

	return items, nil
}

// Reconcile применяет набор изменений корзины в одной транзакции.
// Сначала удаляются позиции из deletes, затем upsert'ятся позиции из
// upserts (ON CONFLICT по (user_id, product_id) обновляет количество).
// Любая ошибка откатывает все изменения - частичное состояние корзины
// невозможно увидеть даже конкурентным чтением.
func (r *basketRepository) Reconcile(ctx context.Context, userID uuid.UUID, upserts []entity.BasketItem, deletes []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin basket transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(deletes) > 0 {
		deleteQuery := `DELETE FROM basket_items WHERE user_id = $1 AND product_id = ANY($2)`
		if _, err := tx.Exec(ctx, deleteQuery, userID, deletes); err != nil {
			return fmt.Errorf("failed to delete basket items: %w", err)
		}
	}

	upsertQuery := `
		INSERT INTO basket_items (user_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, item := range upserts {
		if _, err := tx.Exec(ctx, upsertQuery, userID, item.ProductID, item.Quantity, now); err != nil {
			return fmt.Errorf("failed to upsert basket item %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit basket transaction: %w", err)
	}

	return nil
}

// DeleteItem удаляет одну позицию корзины
func (r *basketRepository) DeleteItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	query := `DELETE FROM basket_items WHERE user_id = $1 AND product_id = $2`

	result, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete basket item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBasketItemNotFound
	}

	return nil
}
