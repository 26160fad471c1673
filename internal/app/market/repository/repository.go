package repository

import (
	"context"
	"errors"
	"time"

	"greenbasket/internal/app/market/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrBasketItemNotFound = errors.New("basket item not found")
	ErrNotInFavorites     = errors.New("product not in favorites")
	ErrTokenNotFound      = errors.New("refresh token not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// BasketRepository управляет позициями корзины.
// Reconcile применяет рассчитанный сервисом набор изменений
// в одной транзакции: либо все upsert'ы и удаления, либо ничего.
type BasketRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.BasketItem, error)
	Reconcile(ctx context.Context, userID uuid.UUID, upserts []entity.BasketItem, deletes []uuid.UUID) error
	DeleteItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error
}

// FavoriteRepository управляет избранными товарами пользователя.
// Add идемпотентен: повторное добавление возвращает added=false без ошибки.
type FavoriteRepository interface {
	Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (added bool, err error)
	Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error
	ListProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// PurchaseRepository фиксирует покупки.
// Finalize записывает купленные товары (с дедупликацией) и очищает
// корзину пользователя в одной транзакции.
type PurchaseRepository interface {
	Finalize(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
	ListProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type ProductRepository interface {
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	UpdateRating(ctx context.Context, id uuid.UUID, avgRating float64, reviewsCount int) error
	ResetRatings(ctx context.Context) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	GetByProductAndUser(ctx context.Context, productID string, userID string) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, productID string, userID string) error
	AggregateByProduct(ctx context.Context, productID string) (*entity.RatingAggregate, error)
	AggregateAll(ctx context.Context) ([]entity.RatingAggregate, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteAllUserTokens(ctx context.Context, userID uuid.UUID) error
}
