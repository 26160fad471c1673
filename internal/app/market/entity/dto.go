package entity

import (
	"github.com/google/uuid"
)

// RegisterRequest - запрос на регистрацию пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RefreshRequest - запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair - пара access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // срок жизни access токена в секундах
}

// AuthResponse - ответ на регистрацию/вход
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// BasketItemRequest - одна позиция в запросе синхронизации корзины
type BasketItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// SyncBasketRequest - запрос синхронизации корзины.
// Items обязателен, но может быть пустым списком - это очищает корзину.
type SyncBasketRequest struct {
	Items []BasketItemRequest `json:"items" validate:"required,dive"`
}

// BasketItemResponse - позиция корзины с данными товара
type BasketItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
}

// BasketResponse - содержимое корзины
type BasketResponse struct {
	Items []BasketItemResponse `json:"items"`
	Total int                  `json:"total"`
}

// FavoriteRequest - запрос добавления/удаления избранного
type FavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// RemoveBasketItemRequest - запрос удаления одной позиции корзины
type RemoveBasketItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// PurchaseRequest - запрос завершения покупки.
// Тело без JSON-массива в purchased_products отклоняется до любых
// мутаций; пустой список допустим и просто очищает корзину.
type PurchaseRequest struct {
	ProductIDs []uuid.UUID `json:"purchased_products" validate:"required"`
}

// AddReviewRequest - запрос на создание отзыва
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// UpdateReviewRequest - запрос на обновление отзыва
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// ProductResponse - товар вместе с отзывами
type ProductResponse struct {
	Product
	Reviews []Review `json:"reviews"`
}

// ProductListResponse - список товаров
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// UserInfoResponse - профиль пользователя для /api/me/info
type UserInfoResponse struct {
	Username          string               `json:"username"`
	Email             string               `json:"email"`
	AvatarURL         string               `json:"avatar_url,omitempty"`
	FavProducts       []uuid.UUID          `json:"fav_products"`
	Basket            []BasketItemResponse `json:"basket"`
	PurchasedProducts []uuid.UUID          `json:"purchased_products"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
