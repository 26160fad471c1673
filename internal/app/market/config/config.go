package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки приложения Greenbasket.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Uploads  UploadsConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL.
// Хранит пользователей, корзины, избранное, покупки и каталог товаров.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// MongoConfig - настройки подключения к MongoDB.
// Отзывы хранятся документной коллекцией.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig - настройки Redis.
// Используется для refresh токенов и кеша списка товаров.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka.
// purchase_events публикуются при завершении покупки,
// review_events - при изменении отзывов (их же слушает consumer пересчёта рейтинга).
type KafkaConfig struct {
	Brokers       []string
	PurchaseTopic string
	ReviewTopic   string
	ConsumerGroup string
}

// JWTConfig - настройки выпуска и проверки JWT токенов.
type JWTConfig struct {
	Secret          string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}

// UploadsConfig - каталог для загружаемых аватаров.
type UploadsConfig struct {
	Dir string
}

// LoggingConfig - уровень логирования и опциональный адрес Logstash.
type LoggingConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_DURATION", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_DURATION value: %w", err)
	}

	refreshDuration, err := time.ParseDuration(getEnv("JWT_REFRESH_DURATION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_DURATION value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "greenbasket"),
			Password: getEnv("DB_PASSWORD", "greenbasket"),
			DBName:   getEnv("DB_NAME", "greenbasket"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "greenbasket"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			PurchaseTopic: getEnv("KAFKA_PURCHASE_TOPIC", "purchase_events"),
			ReviewTopic:   getEnv("KAFKA_REVIEW_TOPIC", "review_events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "greenbasket-workers"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessDuration:  accessDuration,
			RefreshDuration: refreshDuration,
		},
		Uploads: UploadsConfig{
			Dir: getEnv("UPLOADS_DIR", "./uploads"),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате URL.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port.
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
