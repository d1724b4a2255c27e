package database

import (
	"database/sql"
	"fmt"
	"time"

	"academy-svc/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// InitDB opens the Postgres pool and ensures the schema exists.
func InitDB(cfg config.Database, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database may come up after us in compose; retry the ping.
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logger.Warn("Database not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("Database connection established", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return db, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_country TEXT NOT NULL,
			items JSONB NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			payment_method TEXT NOT NULL,
			payment_sender TEXT NOT NULL DEFAULT '',
			payment_txn_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			duration TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			cover_image TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
