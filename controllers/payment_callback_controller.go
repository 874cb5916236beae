package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/kkiapay"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
)

// gatewayVerifier is set once at startup. Tests swap in a fake.
var gatewayVerifier kkiapay.Verifier

// InitPaymentGateway wires the gateway client used by the callback handler
func InitPaymentGateway(v kkiapay.Verifier) {
	gatewayVerifier = v
}

const gatewayVerifyTimeout = 15 * time.Second

// GET /v1/payments/kkiapay/callback
//
// The gateway redirects the shopper's browser here after the payment widget
// closes. A browser redirect proves nothing, so the reported status is
// ignored and the transaction is re-verified server-side before any state
// changes. The shopper always ends up on the order-status page; ambiguous
// outcomes land there as "failed", never as "success".
func HandleKkiapayCallback(c *gin.Context) {
	utils.LogInfo("HandleKkiapayCallback called")

	orderID := c.Query("transactionId") // the widget echoes our order id under this name
	transactionID := c.Query("transaction_id")
	if transactionID == "" {
		transactionID = c.Query("id")
	}

	if transactionID == "" {
		utils.LogError("Callback missing gateway transaction id for order %q", orderID)
		redirectToStatusPage(c, orderID, "error", "Missing payment reference")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayVerifyTimeout)
	defer cancel()

	txn, err := gatewayVerifier.VerifyTransaction(ctx, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, kkiapay.ErrTransactionNotFound):
			utils.LogError("Gateway does not know transaction %s: %v", transactionID, err)
		case errors.Is(err, kkiapay.ErrGatewayUnavailable):
			utils.LogError("Gateway unavailable verifying transaction %s: %v", transactionID, err)
		default:
			utils.LogError("Verification failed for transaction %s: %v", transactionID, err)
		}
		redirectToStatusPage(c, orderID, "failed", "We could not confirm your payment. Please try again.")
		return
	}
	utils.LogInfo("Gateway verified transaction %s with status %s", transactionID, txn.Status)

	result, appErr := ReconcilePayment(config.DB, ReconciliationInput{
		OrderID:       orderID,
		TransactionID: transactionID,
		GatewayStatus: txn.Status,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		PaymentMethod: txn.Source,
	})
	if appErr != nil {
		utils.LogError("Callback reconciliation failed for transaction %s: %v", transactionID, appErr)
		if utils.IsNotFoundError(appErr) {
			redirectToStatusPage(c, orderID, "error", "Order not found")
			return
		}
		redirectToStatusPage(c, orderID, "error", "Something went wrong while recording your payment")
		return
	}

	switch result.Outcome {
	case OutcomeSuccess:
		redirectToStatusPage(c, result.Order.ID, "success", "Payment received. Thank you!")
	case OutcomePending:
		redirectToStatusPage(c, result.Order.ID, "failed", "Your payment is still being processed")
	default:
		redirectToStatusPage(c, result.Order.ID, "failed", "Your payment was not completed")
	}
}

// redirectToStatusPage sends the browser to the storefront's order-status
// page with a coarse status and a short human-readable message.
func redirectToStatusPage(c *gin.Context, orderID, status, message string) {
	target := fmt.Sprintf("%s/order-status?orderId=%s&status=%s&message=%s",
		config.AppConfig.PublicBaseURL,
		url.QueryEscape(orderID),
		url.QueryEscape(status),
		url.QueryEscape(message),
	)
	c.Redirect(http.StatusFound, target)
}
