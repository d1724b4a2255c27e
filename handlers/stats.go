package handlers

import (
	"net/http"

	"academy-svc/database"
	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsHandler serves the admin dashboard aggregates.
type StatsHandler struct {
	orders   *database.OrderStore
	products *database.ProductStore
	blogs    *database.BlogStore
	logger   *zap.Logger
}

func NewStatsHandler(orders *database.OrderStore, products *database.ProductStore, blogs *database.BlogStore, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{orders: orders, products: products, blogs: blogs, logger: logger}
}

// GetStats handles GET /admin/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.orders.StatusCounts(ctx)
	if err != nil {
		h.logger.Error("Failed to load order counts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	revenue, err := h.orders.Revenue(ctx)
	if err != nil {
		h.logger.Error("Failed to load revenue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	productCount, err := h.products.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	blogCount, err := h.blogs.Count(ctx)
	if err != nil {
		h.logger.Error("Failed to count blog posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	var totalOrders int64
	for _, n := range counts {
		totalOrders += n
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"total":     totalOrders,
			"pending":   counts[models.StatusPending],
			"approved":  counts[models.StatusApproved],
			"rejected":  counts[models.StatusRejected],
			"completed": counts[models.StatusCompleted],
		},
		"revenue":  revenue,
		"products": productCount,
		"blogs":    blogCount,
	})
}
