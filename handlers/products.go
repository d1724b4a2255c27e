package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"academy-svc/database"
	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productsCacheKey = "products:all"
	productsCacheTTL = 5 * time.Minute
)

type ProductHandler struct {
	store  *database.ProductStore
	cache  *redis.Client
	logger *zap.Logger
}

func NewProductHandler(store *database.ProductStore, cache *redis.Client, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{store: store, cache: cache, logger: logger}
}

// GetProducts serves the catalog list, cache first.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, productsCacheKey).Bytes()
		if err == nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("Product cache read failed", zap.Error(err))
		}
	}

	products, err := h.store.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	if h.cache != nil {
		if body, err := json.Marshal(products); err == nil {
			if err := h.cache.Set(ctx, productsCacheKey, body, productsCacheTTL).Err(); err != nil {
				h.logger.Warn("Product cache write failed", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if product.Name == "" || product.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and price must not be negative"})
		return
	}

	if err := h.store.Create(c.Request.Context(), &product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	product.ID = id

	if err := h.store.Update(c.Request.Context(), &product); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("Failed to update product", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("Failed to delete product", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *ProductHandler) invalidate(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Del(c.Request.Context(), productsCacheKey).Err(); err != nil {
		h.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
}
