package controllers

import (
	"encoding/json"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
)

// kkiapayWebhookPayload mirrors the gateway's webhook body. Data.Reference
// carries the local order id we handed to the payment widget; older widget
// versions omit it, in which case resolution falls back to the pinned
// transaction id.
type kkiapayWebhookPayload struct {
	EventType string `json:"event_type"`
	Data      struct {
		ID            string  `json:"id"` // gateway transaction id
		Reference     string  `json:"reference"`
		Status        string  `json:"status"`
		Amount        float64 `json:"amount"`
		Currency      string  `json:"currency"`
		PaymentMethod string  `json:"paymentMethod"`
	} `json:"data"`
}

// POST /v1/payments/kkiapay/webhook
//
// Server-to-server push from the gateway. The body is trusted only after its
// HMAC signature checks out against the raw bytes. Anything but a 200 tells
// the gateway to redeliver, so every failure path returns its real status.
func HandleKkiapayWebhook(c *gin.Context) {
	utils.LogInfo("HandleKkiapayWebhook called")

	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Failed to read request body", nil)
		return
	}

	signature := c.GetHeader("X-Kkiapay-Signature")
	if !utils.VerifySignature(body, signature, config.AppConfig.KkiapayWebhookSecret) {
		utils.LogSecurityEvent("Webhook signature verification failed from %s", c.ClientIP())
		utils.Unauthorized(c, "Invalid webhook signature")
		return
	}

	var payload kkiapayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.LogError("Failed to parse webhook payload: %v", err)
		utils.BadRequest(c, "Malformed webhook payload", nil)
		return
	}
	if payload.Data.ID == "" {
		utils.LogError("Webhook payload missing transaction id, event_type: %s", payload.EventType)
		utils.BadRequest(c, "Webhook payload missing transaction id", nil)
		return
	}
	utils.LogInfo("Webhook %s for transaction %s, reference %q, status %s",
		payload.EventType, payload.Data.ID, payload.Data.Reference, payload.Data.Status)

	result, appErr := ReconcilePayment(config.DB, ReconciliationInput{
		OrderID:       payload.Data.Reference,
		TransactionID: payload.Data.ID,
		GatewayStatus: payload.Data.Status,
		Amount:        payload.Data.Amount,
		Currency:      payload.Data.Currency,
		PaymentMethod: payload.Data.PaymentMethod,
	})
	if appErr != nil {
		utils.LogError("Webhook reconciliation failed for transaction %s: %v", payload.Data.ID, appErr)
		utils.Error(c, appErr.Code, appErr.Message, nil)
		return
	}

	utils.LogInfo("Webhook reconciled order %s to %s (transitioned: %v)",
		result.Order.ID, result.Order.Status, result.Transitioned)
	utils.Success(c, "Webhook processed", gin.H{
		"order_id": result.Order.ID,
		"status":   result.Order.Status,
		"outcome":  result.Outcome,
	})
}
