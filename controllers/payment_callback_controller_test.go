package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ayele-dev/zemcart/kkiapay"
	"github.com/ayele-dev/zemcart/models"
	"github.com/stretchr/testify/assert"
)

// fakeVerifier stands in for the gateway on the callback path
type fakeVerifier struct {
	txn *kkiapay.Transaction
	err error
}

func (f *fakeVerifier) VerifyTransaction(ctx context.Context, transactionID string) (*kkiapay.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	txn := *f.txn
	txn.TransactionID = transactionID
	return &txn, nil
}

func getCallback(t *testing.T, router http.Handler, orderID, transactionID string) *httptest.ResponseRecorder {
	t.Helper()
	target := fmt.Sprintf("/v1/payments/kkiapay/callback?transactionId=%s&transaction_id=%s",
		url.QueryEscape(orderID), url.QueryEscape(transactionID))
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("Failed to build callback request: %v", err)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, orderID, status string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	parsed, err := url.Parse(location)
	if err != nil {
		t.Fatalf("Redirect location %q does not parse: %v", location, err)
	}
	assert.Equal(t, "/order-status", parsed.Path)
	assert.Equal(t, orderID, parsed.Query().Get("orderId"))
	assert.Equal(t, status, parsed.Query().Get("status"))
	assert.NotEmpty(t, parsed.Query().Get("message"))
}

func TestCallbackVerifiedFailure(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "2b3c4d5e-6f70-4812-9a3b-4c5d6e7f8a17", user.ID)
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "FAILED", Amount: 5000, Currency: "XOF", Source: "MTN"}})
	router := newPaymentRouter()

	w := getCallback(t, router, order.ID, "tx2")

	assertRedirect(t, w, order.ID, "failed")
	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, models.OrderStatusPaymentFailed, got.Status)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
}

func TestCallbackVerifiedSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	seedCart(t, db, user.ID)
	order := createPendingOrder(t, db, "3c4d5e6f-7081-4923-8b4c-5d6e7f8a9b18", user.ID)
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "SUCCESS", Amount: 5000, Currency: "XOF", Source: "MTN"}})
	router := newPaymentRouter()

	w := getCallback(t, router, order.ID, "tx1")

	assertRedirect(t, w, order.ID, "success")
	got := reloadOrder(t, db, order.ID)
	assert.Equal(t, models.OrderStatusPaidSuccess, got.Status)
	assert.Equal(t, "tx1", got.GatewayTransactionID)
	assert.Equal(t, int64(0), cartCount(t, db, user.ID))
}

func TestCallbackGatewayUnavailable(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "4d5e6f70-8192-4a34-9c5d-6e7f8a9b0c19", user.ID)
	InitPaymentGateway(&fakeVerifier{err: fmt.Errorf("%w: connection refused", kkiapay.ErrGatewayUnavailable)})
	router := newPaymentRouter()

	w := getCallback(t, router, order.ID, "tx1")

	// Unverifiable is presented as failed, never as success, and the order is
	// left untouched for the webhook to settle later.
	assertRedirect(t, w, order.ID, "failed")
	assert.Equal(t, models.OrderStatusPending, reloadOrder(t, db, order.ID).Status)
}

func TestCallbackUnknownTransaction(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "5e6f7081-92a3-4b45-8d6e-7f8a9b0c1d20", user.ID)
	InitPaymentGateway(&fakeVerifier{err: fmt.Errorf("%w: tx1", kkiapay.ErrTransactionNotFound)})
	router := newPaymentRouter()

	w := getCallback(t, router, order.ID, "tx1")

	assertRedirect(t, w, order.ID, "failed")
	assert.Equal(t, models.OrderStatusPending, reloadOrder(t, db, order.ID).Status)
}

func TestCallbackMissingTransactionParam(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "6f708192-a3b4-4c56-9e7f-8a9b0c1d2e21", user.ID)
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "SUCCESS"}})
	router := newPaymentRouter()

	req, _ := http.NewRequest(http.MethodGet,
		"/v1/payments/kkiapay/callback?transactionId="+order.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertRedirect(t, w, order.ID, "error")
}

func TestCallbackUnknownOrder(t *testing.T) {
	setupTestDB(t)
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "SUCCESS", Amount: 5000}})
	router := newPaymentRouter()

	w := getCallback(t, router, "708192a3-b4c5-4d67-8f8a-9b0c1d2e3f22", "tx1")

	assertRedirect(t, w, "708192a3-b4c5-4d67-8f8a-9b0c1d2e3f22", "error")
}

func TestCallbackAfterWebhookConvergesToSameState(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "8192a3b4-c5d6-4e78-9a9b-0c1d2e3f4a23", user.ID)
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "SUCCESS", Amount: 5000, Currency: "XOF", Source: "MTN"}})
	router := newPaymentRouter()

	// Webhook wins the race, then the browser callback lands.
	body, signature := signedWebhookBody(t, "tx1", order.ID, "SUCCESS", 5000)
	assert.Equal(t, http.StatusOK, postWebhook(t, router, body, signature).Code)
	afterWebhook := reloadOrder(t, db, order.ID)

	w := getCallback(t, router, order.ID, "tx1")

	assertRedirect(t, w, order.ID, "success")
	afterCallback := reloadOrder(t, db, order.ID)
	assert.Equal(t, afterWebhook.Status, afterCallback.Status)
	assert.Equal(t, afterWebhook.GatewayTransactionID, afterCallback.GatewayTransactionID)
	assert.Equal(t, int64(1), paymentCount(t, db, order.ID))
}

func TestCallbackStalePendingAfterSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	order := createPendingOrder(t, db, "92a3b4c5-d6e7-4f89-8b0c-1d2e3f4a5b24", user.ID)
	router := newPaymentRouter()

	body, signature := signedWebhookBody(t, "tx1", order.ID, "SUCCESS", 5000)
	assert.Equal(t, http.StatusOK, postWebhook(t, router, body, signature).Code)

	// The gateway's verify endpoint lags behind and still reports PENDING.
	InitPaymentGateway(&fakeVerifier{txn: &kkiapay.Transaction{Status: "PENDING", Amount: 5000, Currency: "XOF"}})
	w := getCallback(t, router, order.ID, "tx1")

	// The stored terminal state is reported, not the stale verification.
	assertRedirect(t, w, order.ID, "success")
	assert.Equal(t, models.OrderStatusPaidSuccess, reloadOrder(t, db, order.ID).Status)
}
