package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "test-webhook-secret"

// setupTestDB gives each test a fresh in-memory database and points the
// package globals at it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.DB = db
	config.AppConfig = &config.Config{
		JWTSecret:            "test-jwt-secret",
		KkiapayWebhookSecret: testWebhookSecret,
		PublicBaseURL:        "https://shop.example.test",
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Username: "ama",
		Email:    "ama@example.test",
		Password: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createPendingOrder(t *testing.T, db *gorm.DB, id string, userID uint) models.Order {
	t.Helper()
	order := models.Order{
		ID:          id,
		UserID:      userID,
		TotalAmount: 5000,
		Currency:    "XOF",
		ShippingAddress: models.ShippingAddress{
			FullName: "Ama Zinsou",
			Line1:    "Rue 12.080",
			City:     "Cotonou",
			Country:  "BJ",
		},
		PaymentMethod: "kkiapay",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return order
}

func seedCart(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	product := models.Product{Name: "Wax fabric", Price: 2500, Stock: 10, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	if err := db.Create(&models.Cart{UserID: userID, ProductID: product.ID, Quantity: 2}).Error; err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
}

func cartCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count cart rows: %v", err)
	}
	return count
}

func paymentCount(t *testing.T, db *gorm.DB, orderID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count payment rows: %v", err)
	}
	return count
}

func reloadOrder(t *testing.T, db *gorm.DB, id string) models.Order {
	t.Helper()
	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		t.Fatalf("Failed to reload order %s: %v", id, err)
	}
	return order
}

// newPaymentRouter builds a router with just the payment entry points
func newPaymentRouter() *gin.Engine {
	router := gin.New()
	router.POST("/v1/payments/kkiapay/webhook", HandleKkiapayWebhook)
	router.GET("/v1/payments/kkiapay/callback", HandleKkiapayCallback)
	router.GET("/v1/orders/:id/status", GetOrderStatus)
	return router
}

// authAs substitutes the auth middleware by injecting the user directly
func authAs(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func postWebhook(t *testing.T, router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "/v1/payments/kkiapay/webhook", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Kkiapay-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signedWebhookBody(t *testing.T, transactionID, reference, status string, amount float64) ([]byte, string) {
	t.Helper()
	payload := map[string]interface{}{
		"event_type": "transaction.updated",
		"data": map[string]interface{}{
			"id":            transactionID,
			"reference":     reference,
			"status":        status,
			"amount":        amount,
			"currency":      "XOF",
			"paymentMethod": "MTN",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal webhook payload: %v", err)
	}
	return body, utils.SignPayload(body, testWebhookSecret)
}
