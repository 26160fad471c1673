package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrBasketItemNotFound  = errors.New("product not found in basket")
	ErrNotInFavorites      = errors.New("product not found in favorites")
	ErrDuplicateReview     = errors.New("user has already reviewed this product")
	ErrReviewNotFound      = errors.New("review not found")
)
