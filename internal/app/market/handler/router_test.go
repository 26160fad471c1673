package handler

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenbasket/internal/app/market/util"
	"greenbasket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newFullRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger.InitWithWriter("greenbasket", "error", io.Discard)

	authHandler, _, _ := newTestAuthHandler()
	catalogHandler, _, _, _ := newTestCatalogHandler()
	reviewHandler, _, _, _ := newTestReviewHandler()
	userHandler, _ := newTestUserHandler(t)
	healthHandler := NewHealthHandler(nil, nil, nil)
	authMiddleware := NewAuthMiddleware(util.NewJWTManager("test-secret", 15*time.Minute, time.Hour))

	return SetupRoutes(
		authHandler,
		catalogHandler,
		reviewHandler,
		userHandler,
		healthHandler,
		authMiddleware,
		t.TempDir(),
	)
}

func TestSetupRoutes_RemoveEndpointsAcceptPost(t *testing.T) {
	// Удаление из корзины и избранного идет POST-запросом с телом;
	// DELETE остается алиасом. Без токена маршрут отвечает 401, а не 404.
	// Arrange
	router := newFullRouter(t)

	paths := []string{"/api/me/basket/remove", "/api/me/favorites/remove"}
	methods := []string{http.MethodPost, http.MethodDelete}

	for _, path := range paths {
		for _, method := range methods {
			req := httptest.NewRequest(method, path, bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s must be routed", method, path)
		}
	}
}
