package handler

import (
	"context"
	"errors"
	"net/http"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ReviewServiceInterface interface {
	AddReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID, username string, req *entity.AddReviewRequest) (*entity.Review, error)
	GetReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	UpdateReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, productID uuid.UUID, userID uuid.UUID) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// AddReview создает отзыв от имени аутентифицированного пользователя
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	username := c.GetString("username")

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req entity.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationError(err),
		})
		return
	}

	review, err := h.reviewService.AddReview(c.Request.Context(), productID, userID, username, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found",
			})
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "You have already reviewed this product",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to create review",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetReviewsByProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetReviewsByProduct(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationError(err),
		})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), productID, userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Review not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to update review",
		})
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), productID, userID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Review not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to delete review",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}
