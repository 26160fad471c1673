package service

import (
	"context"
	"time"

	"greenbasket/internal/app/market/entity"
)

// MessagePublisher абстрагирует Kafka producer для тестируемости
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}

// ProductCache абстрагирует Redis-кеш списка товаров
type ProductCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error
	DeleteProducts(ctx context.Context) error
}
