package handler

import (
	"context"
	"errors"
	"net/http"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResponse, error)
}

type CatalogHandler struct {
	catalogService CatalogServiceInterface
}

func NewCatalogHandler(catalogService CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get products",
		})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
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
			"message": "Failed to get product",
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

// parseProductID разбирает параметр пути :id
func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid product ID",
		})
		return uuid.Nil, false
	}
	return productID, true
}
