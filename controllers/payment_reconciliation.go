package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"gorm.io/gorm"
)

// Reconciliation outcomes, the coarse answer both entry points report back
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomePending = "pending"
)

// ReconciliationInput is the normalized payment event. The webhook handler
// fills it from the signed body, the callback handler from a server-side
// gateway verification; both carry the same semantic event.
type ReconciliationInput struct {
	OrderID       string // local order id as reported by the gateway, may be empty
	TransactionID string // gateway transaction id
	GatewayStatus string
	Amount        float64
	Currency      string
	PaymentMethod string
}

// ReconciliationResult reports the state the order converged to.
// Transitioned is true only when this event actually changed the order,
// which is what gates the at-most-once side effects (confirmation email).
type ReconciliationResult struct {
	Order        models.Order
	Outcome      string
	Transitioned bool
}

// statusRank orders payment states by definitiveness. An event may never
// move an order to a lower rank: a replayed "pending" cannot reopen a
// completed payment, and a recorded failure yields to a verified success for
// the same transaction. Fulfillment states (and cancellation) sit above the
// whole payment subset: once an order has moved past payment, a redelivered
// payment event is always stale.
func statusRank(orderStatus string) int {
	switch orderStatus {
	case models.OrderStatusPending:
		return 1
	case models.OrderStatusPaymentFailed:
		return 2
	case models.OrderStatusPaidSuccess:
		return 3
	default:
		return 4
	}
}

// mapGatewayStatus translates the gateway's status vocabulary into the
// internal order/payment enums. Unrecognized values map to failed: a status
// we cannot interpret must never be presented as a successful payment.
func mapGatewayStatus(gatewayStatus string) (orderStatus, paymentStatus, outcome string, recognized bool) {
	switch strings.ToUpper(strings.TrimSpace(gatewayStatus)) {
	case "SUCCESS", "SUCCEEDED", "COMPLETED", "PAID":
		return models.OrderStatusPaidSuccess, models.PaymentStatusCompleted, OutcomeSuccess, true
	case "FAILED", "DECLINED", "CANCELLED", "CANCELED":
		return models.OrderStatusPaymentFailed, models.PaymentStatusFailed, OutcomeFailed, true
	case "PENDING", "PROCESSING":
		return models.OrderStatusPending, models.PaymentStatusPending, OutcomePending, true
	default:
		return models.OrderStatusPaymentFailed, models.PaymentStatusFailed, OutcomeFailed, false
	}
}

func outcomeForStatus(orderStatus string) string {
	switch orderStatus {
	case models.OrderStatusPaidSuccess, models.OrderStatusProcessing, models.OrderStatusOnHold,
		models.OrderStatusShipped, models.OrderStatusDelivered:
		// Fulfillment only starts after a successful payment.
		return OutcomeSuccess
	case models.OrderStatusPaymentFailed, models.OrderStatusCancelled:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// ReconcilePayment maps one payment event onto the order and its payment
// sub-record. It is the single place where order payment state changes, so
// the idempotency and no-regression guarantees are enforced exactly once for
// every entry point that races to report the same payment.
//
// The whole update runs in one transaction: order update, payment upsert and
// cart clear either all commit or all roll back. An unresolvable event
// returns a not-found error rather than silently succeeding, so the gateway
// keeps retrying until the order-creation race settles.
func ReconcilePayment(db *gorm.DB, input ReconciliationInput) (*ReconciliationResult, *utils.AppError) {
	if input.TransactionID == "" {
		return nil, utils.BadRequestError("Missing gateway transaction id", nil)
	}

	newOrderStatus, newPaymentStatus, outcome, recognized := mapGatewayStatus(input.GatewayStatus)
	if !recognized {
		utils.LogError("Unrecognized gateway status %q for transaction %s, treating as failed",
			input.GatewayStatus, input.TransactionID)
	}

	result := &ReconciliationResult{Outcome: outcome}
	var appErr *utils.AppError

	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Resolve the order: a prior partial reconciliation may already have
		// pinned the transaction id, so that lookup wins over the id the
		// gateway echoed back.
		var order models.Order
		err := tx.Where("gateway_transaction_id = ?", input.TransactionID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && input.OrderID != "" {
			err = tx.Where("id = ?", input.OrderID).First(&order).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = utils.NotFoundError("No order matches this payment event", err)
			return appErr
		}
		if err != nil {
			appErr = utils.InternalError("Failed to look up order", err)
			return appErr
		}

		// One order binds to at most one gateway transaction.
		if order.GatewayTransactionID != "" && order.GatewayTransactionID != input.TransactionID {
			utils.LogError("Transaction id mismatch for order %s: stored %s, received %s",
				order.ID, order.GatewayTransactionID, input.TransactionID)
			appErr = utils.ConflictError("Order is bound to a different gateway transaction", nil)
			return appErr
		}

		// Late-arrival guard: a less definitive event never overwrites a more
		// definitive recorded state. The stale event is acknowledged as
		// processed, with the stored state reported back.
		if statusRank(newOrderStatus) < statusRank(order.Status) {
			utils.LogInfo("Ignoring stale %q event for order %s already in %s",
				input.GatewayStatus, order.ID, order.Status)
			result.Order = order
			result.Outcome = outcomeForStatus(order.Status)
			result.Transitioned = false
			return nil
		}

		now := time.Now()
		transitioned := order.Status != newOrderStatus

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":                 newOrderStatus,
			"payment_status":         newPaymentStatus,
			"gateway_transaction_id": input.TransactionID,
			"updated_at":             now,
		}).Error; err != nil {
			appErr = utils.InternalError("Failed to update order", err)
			return appErr
		}

		// Upsert the payment keyed by order id. Replays of the same terminal
		// event converge to the same single row.
		var payment models.Payment
		err = tx.Where("order_id = ?", order.ID).First(&payment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = models.Payment{
				OrderID:              order.ID,
				Method:               input.PaymentMethod,
				GatewayTransactionID: input.TransactionID,
				Amount:               input.Amount,
				Currency:             input.Currency,
				Status:               newPaymentStatus,
			}
			if outcome == OutcomeSuccess {
				payment.PaymentDate = &now
			}
			if err := tx.Create(&payment).Error; err != nil {
				appErr = utils.InternalError("Failed to create payment record", err)
				return appErr
			}
		case err != nil:
			appErr = utils.InternalError("Failed to look up payment record", err)
			return appErr
		default:
			updates := map[string]interface{}{
				"method":                 input.PaymentMethod,
				"gateway_transaction_id": input.TransactionID,
				"amount":                 input.Amount,
				"currency":               input.Currency,
				"status":                 newPaymentStatus,
				"updated_at":             now,
			}
			if outcome == OutcomeSuccess {
				updates["payment_date"] = now
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				appErr = utils.InternalError("Failed to update payment record", err)
				return appErr
			}
		}

		if outcome == OutcomeSuccess {
			if err := utils.ClearCart(tx, order.UserID); err != nil {
				appErr = utils.InternalError("Failed to clear cart", err)
				return appErr
			}
		}

		order.Status = newOrderStatus
		order.PaymentStatus = newPaymentStatus
		order.GatewayTransactionID = input.TransactionID
		order.UpdatedAt = now
		result.Order = order
		result.Transitioned = transitioned
		return nil
	})

	if txErr != nil {
		if appErr != nil {
			return nil, appErr
		}
		return nil, utils.InternalError("Reconciliation transaction failed", txErr)
	}

	if result.Transitioned && result.Outcome == OutcomeSuccess && result.Order.UserEmail != "" {
		order := result.Order
		go func() {
			if err := utils.SendPaymentConfirmation(order.UserEmail, order.ID, order.TotalAmount, order.Currency); err != nil {
				utils.LogError("Failed to send payment confirmation for order %s: %v", order.ID, err)
			}
		}()
	}

	return result, nil
}
