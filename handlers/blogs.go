package handlers

import (
	"errors"
	"net/http"

	"academy-svc/database"
	"academy-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BlogHandler struct {
	store  *database.BlogStore
	logger *zap.Logger
}

func NewBlogHandler(store *database.BlogStore, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{store: store, logger: logger}
}

func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list blog posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blog posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BlogHandler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.store.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog post not found"})
			return
		}
		h.logger.Error("Failed to get blog post", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get blog post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) CreatePost(c *gin.Context) {
	var post models.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if post.Title == "" || post.Slug == "" || post.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, slug and content are required"})
		return
	}

	if err := h.store.Create(c.Request.Context(), &post); err != nil {
		if errors.Is(err, models.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "a post with this slug already exists"})
			return
		}
		h.logger.Error("Failed to create blog post", zap.String("slug", post.Slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create blog post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	slug := c.Param("slug")

	var post models.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	post.Slug = slug

	if err := h.store.Update(c.Request.Context(), &post); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog post not found"})
			return
		}
		h.logger.Error("Failed to update blog post", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update blog post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	slug := c.Param("slug")

	if err := h.store.Delete(c.Request.Context(), slug); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog post not found"})
			return
		}
		h.logger.Error("Failed to delete blog post", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete blog post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slug": slug, "deleted": true})
}
