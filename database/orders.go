package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"academy-svc/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const orderColumns = `order_id, customer_name, customer_email, customer_phone, customer_country,
	items, total_amount, payment_method, payment_sender, payment_txn_id, status, created_at, updated_at`

// OrderStore persists orders. Status transitions are expressed as single
// UPDATE statements keyed on order_id so duplicate provider callbacks
// converge without cross-request locking.
type OrderStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOrderStore(db *sql.DB, logger *zap.Logger) *OrderStore {
	return &OrderStore{db: db, logger: logger}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO orders (order_id, customer_name, customer_email, customer_phone, customer_country,
			items, total_amount, payment_method, payment_sender, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		order.OrderID, order.Customer.FullName, order.Customer.Email, order.Customer.Phone,
		order.Customer.Country, items, order.TotalAmount, string(order.Payment.Method),
		order.Payment.SenderNumber, string(order.Status),
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("order %s: %w", order.OrderID, models.ErrConflict)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List returns orders newest first, capped to limit when limit > 0.
func (s *OrderStore) List(ctx context.Context, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// MarkCompleted records a successful gateway payment. Returns the number
// of rows touched; zero means the order id is unknown.
func (s *OrderStore) MarkCompleted(ctx context.Context, orderID, transactionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, payment_txn_id = $2, updated_at = now()
		WHERE order_id = $3`,
		string(models.StatusCompleted), transactionID, orderID)
	if err != nil {
		return 0, fmt.Errorf("mark completed: %w", err)
	}
	return res.RowsAffected()
}

// MarkRejected records a failed or cancelled gateway payment. Payment
// fields are left untouched.
func (s *OrderStore) MarkRejected(ctx context.Context, orderID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE order_id = $2`,
		string(models.StatusRejected), orderID)
	if err != nil {
		return 0, fmt.Errorf("mark rejected: %w", err)
	}
	return res.RowsAffected()
}

// SetStatus is the administrative override path.
func (s *OrderStore) SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = now()
		WHERE order_id = $2`,
		string(status), orderID)
	if err != nil {
		return 0, fmt.Errorf("set status: %w", err)
	}
	return res.RowsAffected()
}

// UpdateCustomer overwrites the customer contact fields of an order.
func (s *OrderStore) UpdateCustomer(ctx context.Context, orderID string, customer models.Customer) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $2, customer_email = $3, customer_phone = $4,
		    customer_country = $5, updated_at = now()
		WHERE order_id = $1`,
		orderID, customer.FullName, customer.Email, customer.Phone, customer.Country)
	if err != nil {
		return 0, fmt.Errorf("update customer %s: %w", orderID, err)
	}
	return res.RowsAffected()
}

func (s *OrderStore) Delete(ctx context.Context, orderID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	return nil
}

// StatusCounts powers the admin dashboard.
func (s *OrderStore) StatusCounts(ctx context.Context) (map[models.OrderStatus]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	counts := map[models.OrderStatus]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}

// Revenue sums approved and completed orders.
func (s *OrderStore) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE status IN ($1, $2)`,
		string(models.StatusApproved), string(models.StatusCompleted)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("revenue: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var items []byte
	var method string
	var status string
	err := row.Scan(&order.OrderID, &order.Customer.FullName, &order.Customer.Email,
		&order.Customer.Phone, &order.Customer.Country, &items, &order.TotalAmount,
		&method, &order.Payment.SenderNumber, &order.Payment.TransactionID,
		&status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	order.Payment.Method = models.PaymentMethod(method)
	order.Status = models.OrderStatus(status)
	return &order, nil
}
