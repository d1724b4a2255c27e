package models

import "time"

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// PaymentMethod is how the customer chose to pay at checkout.
type PaymentMethod string

const (
	MethodBkash      PaymentMethod = "bKash"
	MethodNagad      PaymentMethod = "Nagad"
	MethodRocket     PaymentMethod = "Rocket"
	MethodBinance    PaymentMethod = "Binance"
	MethodBybit      PaymentMethod = "Bybit"
	MethodCrypto     PaymentMethod = "Crypto"
	MethodSSLCommerz PaymentMethod = "SSLCommerz"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBkash, MethodNagad, MethodRocket, MethodBinance, MethodBybit, MethodCrypto, MethodSSLCommerz:
		return true
	}
	return false
}

// Customer is captured once at order creation and never updated.
type Customer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
}

// OrderItem is a snapshot of a cart line at order time. Items are not
// re-derived from the live catalog after creation.
type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
	Duration string  `json:"duration,omitempty"`
	Type     string  `json:"type,omitempty"`
}

// PaymentInfo holds the method picked at checkout and, after a success
// callback, the provider's transaction id.
type PaymentInfo struct {
	Method        PaymentMethod `json:"method"`
	SenderNumber  string        `json:"senderNumber,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// Order is the purchase record tracked through the payment lifecycle.
// OrderID doubles as the provider's tran_id.
type Order struct {
	ID          int64       `json:"-"`
	OrderID     string      `json:"orderId"`
	Customer    Customer    `json:"customer"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Payment     PaymentInfo `json:"payment"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Product is a catalog entry (course, bundle, ...).
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Type        string    `json:"type,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BlogPost is a storefront article. Slug is unique.
type BlogPost struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	CoverImage string    `json:"coverImage,omitempty"`
	Author     string    `json:"author,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
