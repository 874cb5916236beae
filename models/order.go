package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPending       = "PENDING"
	OrderStatusProcessing    = "PROCESSING"
	OrderStatusOnHold        = "ON_HOLD"
	OrderStatusShipped       = "SHIPPED"
	OrderStatusDelivered     = "DELIVERED"
	OrderStatusPaidSuccess   = "PAID_SUCCESS"
	OrderStatusPaymentFailed = "PAYMENT_FAILED"
	OrderStatusCancelled     = "CANCELLED"
)

// ShippingAddress is snapshotted onto the order at creation time so later
// address edits never change what an order was shipped against.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Order is keyed by a client-minted UUID. The id doubles as the reference
// passed to the payment gateway and is the idempotency anchor for
// reconciliation; it is immutable once created.
type Order struct {
	ID                   string          `gorm:"primaryKey;size:36" json:"id"`
	UserID               uint            `gorm:"index" json:"user_id"`
	User                 User            `json:"-" gorm:"foreignKey:UserID"`
	TotalAmount          float64         `json:"total_amount"`
	Currency             string          `gorm:"size:8;default:XOF" json:"currency"`
	ShippingAddress      ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod        string          `json:"payment_method"`
	Status               string          `gorm:"size:32;index" json:"status"`
	PaymentStatus        string          `gorm:"size:32" json:"payment_status"`
	GatewayTransactionID string          `gorm:"size:64;index" json:"gateway_transaction_id,omitempty"`
	UserEmail            string          `json:"user_email,omitempty"`
	UserPhoneNumber      string          `json:"user_phone_number,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	OrderItems           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Payment              *Payment        `json:"payment,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   string  `gorm:"size:36;index" json:"order_id"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // unit price at order time
	Total     float64 `json:"total"`
}
