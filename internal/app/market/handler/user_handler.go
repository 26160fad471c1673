package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type BasketServiceInterface interface {
	SyncBasket(ctx context.Context, userID uuid.UUID, desired []entity.BasketItemRequest) error
	GetBasket(ctx context.Context, userID uuid.UUID) ([]entity.BasketItemResponse, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error
}

type FavoriteServiceInterface interface {
	Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]entity.Product, error)
}

type PurchaseServiceInterface interface {
	Purchase(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
	ListPurchased(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type UserServiceInterface interface {
	GetUserInfo(ctx context.Context, userID uuid.UUID) (*entity.UserInfoResponse, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error
}

// UserHandler обслуживает личный кабинет: корзину, избранное,
// покупки, профиль и аватар
type UserHandler struct {
	basketService   BasketServiceInterface
	favoriteService FavoriteServiceInterface
	purchaseService PurchaseServiceInterface
	userService     UserServiceInterface
	uploadsDir      string
	validator       *validator.Validate
}

func NewUserHandler(
	basketService BasketServiceInterface,
	favoriteService FavoriteServiceInterface,
	purchaseService PurchaseServiceInterface,
	userService UserServiceInterface,
	uploadsDir string,
) *UserHandler {
	return &UserHandler{
		basketService:   basketService,
		favoriteService: favoriteService,
		purchaseService: purchaseService,
		userService:     userService,
		uploadsDir:      uploadsDir,
		validator:       validator.New(),
	}
}

// SyncBasket приводит корзину к присланному состоянию.
// Пустой items очищает корзину.
func (h *UserHandler) SyncBasket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.SyncBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if req.Items == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "items is required",
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

	if err := h.basketService.SyncBasket(c.Request.Context(), userID, req.Items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to sync basket",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Basket synced successfully",
	})
}

func (h *UserHandler) GetBasket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.basketService.GetBasket(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get basket",
		})
		return
	}

	c.JSON(http.StatusOK, entity.BasketResponse{
		Items: items,
		Total: len(items),
	})
}

func (h *UserHandler) RemoveBasketItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.RemoveBasketItemRequest
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

	if err := h.basketService.RemoveItem(c.Request.Context(), userID, req.ProductID); err != nil {
		if errors.Is(err, service.ErrBasketItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found in basket",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to remove basket item",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Basket item removed",
	})
}

// AddFavorite добавляет товар в избранное. Повторное добавление
// отвечает 200 вместо 201.
func (h *UserHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.FavoriteRequest
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

	added, err := h.favoriteService.Add(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to add favorite",
		})
		return
	}

	if added {
		c.JSON(http.StatusCreated, entity.SuccessResponse{
			Message: "Product added to favorites",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product already in favorites",
	})
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.FavoriteRequest
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

	if err := h.favoriteService.Remove(c.Request.Context(), userID, req.ProductID); err != nil {
		if errors.Is(err, service.ErrNotInFavorites) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found in favorites",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to remove favorite",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product removed from favorites",
	})
}

func (h *UserHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	products, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get favorites",
		})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// Purchase фиксирует покупку и очищает корзину
func (h *UserHandler) Purchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.PurchaseRequest
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

	if err := h.purchaseService.Purchase(c.Request.Context(), userID, req.ProductIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to complete purchase",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Purchase completed",
	})
}

func (h *UserHandler) ListPurchased(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.purchaseService.ListPurchased(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get purchased products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchased_products": ids,
	})
}

func (h *UserHandler) GetInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	info, err := h.userService.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get user info",
		})
		return
	}

	c.JSON(http.StatusOK, info)
}

// UploadAvatar принимает multipart-файл и сохраняет его на диск.
// Имя файла - user_id с исходным расширением, повторная загрузка
// перезаписывает старый аватар.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "avatar file is required",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Unsupported image format",
		})
		return
	}

	filename := fmt.Sprintf("%s%s", userID.String(), ext)
	dst := filepath.Join(h.uploadsDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to save avatar",
		})
		return
	}

	avatarURL := "/uploads/" + filename
	if err := h.userService.SetAvatar(c.Request.Context(), userID, avatarURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to update avatar",
		})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Avatar uploaded",
		Data:    gin.H{"avatar_url": avatarURL},
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}
