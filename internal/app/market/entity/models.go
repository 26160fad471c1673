package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User представляет зарегистрированного пользователя.
// Пароль хранится только в виде bcrypt-хэша.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BasketItem - позиция корзины. Уникальность по паре (user_id, product_id),
// количество всегда >= 1.
type BasketItem struct {
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product представляет товар каталога.
// AvgRating и ReviewsCount - агрегаты, пересчитываемые processor'ом
// по отзывам из MongoDB.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	IsAlcohol    bool      `json:"is_alcohol"`
	AvgRating    float64   `json:"avg_rating"`
	ReviewsCount int       `json:"reviews_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName возвращает имя таблицы для GORM.
func (Product) TableName() string {
	return "products"
}

// Review - отзыв на товар, хранится в MongoDB.
// UserID - аутентифицированный автор, Author - его username на момент создания.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"` // UUID товара
	UserID    string             `json:"user_id" bson:"user_id"`       // UUID автора
	Author    string             `json:"author" bson:"author"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RefreshToken - refresh токен пользователя, хранится в Redis с TTL.
type RefreshToken struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingAggregate - результат агрегации отзывов одного товара.
type RatingAggregate struct {
	ProductID string  `bson:"_id"`
	AvgRating float64 `bson:"avg_rating"`
	Count     int     `bson:"count"`
}

// PurchaseEvent - событие завершения покупки для Kafka.
type PurchaseEvent struct {
	EventType  string      `json:"event_type"` // PURCHASE_COMPLETED
	UserID     uuid.UUID   `json:"user_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ReviewEvent - событие изменения отзыва для Kafka.
// Consumer пересчитывает агрегаты рейтинга товара по этим событиям.
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
