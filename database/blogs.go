package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-svc/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BlogStore persists blog posts. Slugs are unique; a duplicate insert
// surfaces as models.ErrConflict.
type BlogStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewBlogStore(db *sql.DB, logger *zap.Logger) *BlogStore {
	return &BlogStore{db: db, logger: logger}
}

func (s *BlogStore) Create(ctx context.Context, post *models.BlogPost) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, content, cover_image, author)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		post.Title, post.Slug, post.Content, post.CoverImage, post.Author,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("slug %s: %w", post.Slug, models.ErrConflict)
		}
		return fmt.Errorf("insert blog post: %w", err)
	}
	return nil
}

func (s *BlogStore) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, content, cover_image, author, created_at, updated_at
		FROM blog_posts WHERE slug = $1`, slug,
	).Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.CoverImage, &post.Author, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("blog post %s: %w", slug, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get blog post: %w", err)
	}
	return &post, nil
}

func (s *BlogStore) List(ctx context.Context) ([]models.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, content, cover_image, author, created_at, updated_at
		FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		var post models.BlogPost
		if err := rows.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.CoverImage, &post.Author, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *BlogStore) Update(ctx context.Context, post *models.BlogPost) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_posts SET title = $1, content = $2, cover_image = $3, author = $4, updated_at = now()
		WHERE slug = $5`,
		post.Title, post.Content, post.CoverImage, post.Author, post.Slug)
	if err != nil {
		return fmt.Errorf("update blog post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("blog post %s: %w", post.Slug, models.ErrNotFound)
	}
	return nil
}

func (s *BlogStore) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("blog post %s: %w", slug, models.ErrNotFound)
	}
	return nil
}

func (s *BlogStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blog posts: %w", err)
	}
	return n, nil
}
