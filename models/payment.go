package models

import (
	"time"
)

// Payment status constants
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Payment is the 1:1 payment sub-record of an order. The unique index on
// OrderID is what turns the reconciliation upsert into "zero or one row per
// order" even under concurrent webhook redelivery.
type Payment struct {
	ID                   uint       `json:"id" gorm:"primaryKey"`
	OrderID              string     `json:"order_id" gorm:"size:36;uniqueIndex"`
	Method               string     `json:"method"`
	GatewayTransactionID string     `json:"gateway_transaction_id" gorm:"size:64"`
	Amount               float64    `json:"amount"`
	Currency             string     `json:"currency" gorm:"size:8"`
	Status               string     `json:"status" gorm:"size:32"`
	PaymentDate          *time.Time `json:"payment_date,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
