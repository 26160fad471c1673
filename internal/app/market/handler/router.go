package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"greenbasket/pkg/logger"
	"greenbasket/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	authHandler *AuthHandler,
	catalogHandler *CatalogHandler,
	reviewHandler *ReviewHandler,
	userHandler *UserHandler,
	healthHandler *HealthHandler,
	authMiddleware *AuthMiddleware,
	uploadsDir string,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("greenbasket"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/health/liveness", healthHandler.Liveness)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Загруженные аватары
	router.Static("/uploads", uploadsDir)

	api := router.Group("/api")
	{
		// Публичные эндпоинты (без аутентификации)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(authMiddleware.Authenticate())
			{
				protected.POST("/logout", authHandler.Logout)
			}
		}

		products := api.Group("/products")
		{
			products.GET("/all_products", catalogHandler.ListProducts)
			products.GET("/:id", catalogHandler.GetProduct)
			products.GET("/:id/reviews", reviewHandler.GetReviewsByProduct)

			// Отзывы пишутся только от аутентифицированного автора
			reviews := products.Group("")
			reviews.Use(authMiddleware.Authenticate())
			{
				reviews.POST("/:id/add-review", reviewHandler.AddReview)
				reviews.PUT("/:id/update-review", reviewHandler.UpdateReview)
				reviews.DELETE("/:id/remove-review", reviewHandler.DeleteReview)
			}
		}

		// Личный кабинет - все маршруты защищены
		me := api.Group("/me")
		me.Use(authMiddleware.Authenticate())
		{
			me.GET("/basket", userHandler.GetBasket)
			me.POST("/basket", userHandler.SyncBasket)
			me.POST("/basket/remove", userHandler.RemoveBasketItem)
			me.DELETE("/basket/remove", userHandler.RemoveBasketItem)

			me.GET("/favorites", userHandler.ListFavorites)
			me.POST("/favorites", userHandler.AddFavorite)
			me.POST("/favorites/remove", userHandler.RemoveFavorite)
			me.DELETE("/favorites/remove", userHandler.RemoveFavorite)

			me.POST("/purchase", userHandler.Purchase)
			me.GET("/purchased-products", userHandler.ListPurchased)

			me.GET("/info", userHandler.GetInfo)
			me.POST("/avatar", userHandler.UploadAvatar)
		}

		// Служебный список всех пользователей
		users := api.Group("/users")
		users.Use(authMiddleware.Authenticate())
		{
			users.GET("/all-users", userHandler.ListUsers)
		}
	}

	return router
}
