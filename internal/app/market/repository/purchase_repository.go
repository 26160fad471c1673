package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type purchaseRepository struct {
	db *pgxpool.Pool
}

// NewPurchaseRepository создает новый репозиторий покупок
func NewPurchaseRepository(db *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Finalize записывает купленные товары и очищает корзину пользователя
// в одной транзакции. Уже купленные товары пропускаются (ON CONFLICT
// DO NOTHING - set union). Если очистка корзины не удалась, запись
// покупок тоже откатывается.
func (r *purchaseRepository) Finalize(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO purchases (user_id, product_id, purchased_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	now := time.Now()
	for _, productID := range productIDs {
		if _, err := tx.Exec(ctx, insertQuery, userID, productID, now); err != nil {
			return fmt.Errorf("failed to record purchase of %s: %w", productID, err)
		}
	}

	clearQuery := `DELETE FROM basket_items WHERE user_id = $1`
	if _, err := tx.Exec(ctx, clearQuery, userID); err != nil {
		return fmt.Errorf("failed to clear basket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit purchase transaction: %w", err)
	}

	return nil
}

// ListProductIDs получает идентификаторы купленных товаров пользователя
func (r *purchaseRepository) ListProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT product_id FROM purchases WHERE user_id = $1 ORDER BY purchased_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return ids, nil
}
