package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthHandler проверяет доступность всех хранилищ
type HealthHandler struct {
	pool        *pgxpool.Pool
	mongoClient *mongo.Client
	redisClient *redis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, mongoClient *mongo.Client, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:        pool,
		mongoClient: mongoClient,
		redisClient: redisClient,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["postgres"] = "healthy"
	}

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		checks["mongodb"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["mongodb"] = "healthy"
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["redis"] = "healthy"
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	})
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}
