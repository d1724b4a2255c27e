package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-svc/models"

	"go.uber.org/zap"
)

// ProductStore is the catalog CRUD layer.
type ProductStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewProductStore(db *sql.DB, logger *zap.Logger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, image, duration, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.Image, p.Duration, p.Type,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, image, duration, type, created_at, updated_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Duration, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, image, duration, type, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Duration, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET name = $1, description = $2, price = $3, image = $4,
			duration = $5, type = $6, updated_at = now()
		WHERE id = $7`,
		p.Name, p.Description, p.Price, p.Image, p.Duration, p.Type, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
