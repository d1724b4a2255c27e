package database

import (
	"context"
	"testing"
	"time"

	"academy-svc/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var orderColumnNames = []string{
	"order_id", "customer_name", "customer_email", "customer_phone", "customer_country",
	"items", "total_amount", "payment_method", "payment_sender", "payment_txn_id",
	"status", "created_at", "updated_at",
}

func sampleOrder() *models.Order {
	return &models.Order{
		OrderID: "AC240101120000-ABCD1234",
		Customer: models.Customer{
			FullName: "Rahim Uddin",
			Email:    "rahim@example.com",
			Phone:    "+8801700000000",
			Country:  "Bangladesh",
		},
		Items: []models.OrderItem{
			{ID: "p1", Name: "Spoken English", Price: 500, Quantity: 1},
		},
		TotalAmount: 500,
		Payment:     models.PaymentInfo{Method: models.MethodBkash},
		Status:      models.StatusPending,
	}
}

func sampleRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumnNames).AddRow(
		"AC240101120000-ABCD1234", "Rahim Uddin", "rahim@example.com", "+8801700000000", "Bangladesh",
		[]byte(`[{"id":"p1","name":"Spoken English","price":500,"quantity":1}]`),
		500.0, "bKash", "", "", "pending", now, now,
	)
}

func TestOrderStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("AC240101120000-ABCD1234", "Rahim Uddin", "rahim@example.com", "+8801700000000",
			"Bangladesh", sqlmock.AnyArg(), 500.0, "bKash", "", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	store := NewOrderStore(db, zap.NewNop())
	order := sampleOrder()
	require.NoError(t, store.Create(context.Background(), order))

	assert.Equal(t, int64(1), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreCreateDuplicateOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505"})

	store := NewOrderStore(db, zap.NewNop())
	err = store.Create(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestOrderStoreGetByOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM orders WHERE order_id").
		WithArgs("AC240101120000-ABCD1234").
		WillReturnRows(sampleRow(time.Now()))

	store := NewOrderStore(db, zap.NewNop())
	order, err := store.GetByOrderID(context.Background(), "AC240101120000-ABCD1234")
	require.NoError(t, err)

	assert.Equal(t, "AC240101120000-ABCD1234", order.OrderID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.MethodBkash, order.Payment.Method)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Spoken English", order.Items[0].Name)
}

func TestOrderStoreGetByOrderIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM orders WHERE order_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	store := NewOrderStore(db, zap.NewNop())
	_, err = store.GetByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM orders ORDER BY created_at DESC LIMIT").
		WithArgs(5).
		WillReturnRows(sampleRow(time.Now()))

	store := NewOrderStore(db, zap.NewNop())
	orders, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderStoreMarkCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("completed", "V123", "AC240101120000-ABCD1234").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewOrderStore(db, zap.NewNop())
	rows, err := store.MarkCompleted(context.Background(), "AC240101120000-ABCD1234", "V123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestOrderStoreMarkCompletedUnknownOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("completed", "V123", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewOrderStore(db, zap.NewNop())
	rows, err := store.MarkCompleted(context.Background(), "missing", "V123")
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestOrderStoreUpdateCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE orders").
		WithArgs("AC240101120000-ABCD1234", "Karim Uddin", "karim@example.com", "+8801800000000", "Bangladesh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewOrderStore(db, zap.NewNop())
	rows, err := store.UpdateCustomer(context.Background(), "AC240101120000-ABCD1234", models.Customer{
		FullName: "Karim Uddin",
		Email:    "karim@example.com",
		Phone:    "+8801800000000",
		Country:  "Bangladesh",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestOrderStoreDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM orders").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewOrderStore(db, zap.NewNop())
	err = store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOrderStoreStatusCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", int64(3)).
			AddRow("completed", int64(7)))

	store := NewOrderStore(db, zap.NewNop())
	counts, err := store.StatusCounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), counts[models.StatusPending])
	assert.Equal(t, int64(7), counts[models.StatusCompleted])
}
