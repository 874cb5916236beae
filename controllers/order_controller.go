package controllers

import (
	"errors"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type createOrderItem struct {
	ProductID uint    `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	ID              string                 `json:"id" binding:"required"`
	Items           []createOrderItem      `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	UserEmail       string                 `json:"userEmail"`
	UserPhoneNumber string                 `json:"userPhoneNumber"`
	Currency        string                 `json:"currency"`
}

// POST /v1/orders
//
// Creates the PENDING order shell before the shopper is handed to the
// payment widget. The client mints the order id (a UUID) so the same id can
// be passed to the gateway as the payment reference; reconciliation later
// keys off it from every entry point.
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.LogInfo("Processing order creation for user ID: %d", user.ID)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if _, err := uuid.Parse(req.ID); err != nil {
		utils.LogError("Order id %q is not a valid UUID: %v", req.ID, err)
		utils.BadRequest(c, "Order id must be a valid UUID", nil)
		return
	}

	if len(req.Items) == 0 {
		utils.LogError("Order %s rejected: no items", req.ID)
		utils.ValidationError(c, "Order must contain at least one item", nil)
		return
	}
	if req.ShippingAddress.Line1 == "" || req.ShippingAddress.City == "" {
		utils.LogError("Order %s rejected: missing shipping address", req.ID)
		utils.ValidationError(c, "Shipping address is required", nil)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "XOF"
	}

	order := models.Order{
		ID:              req.ID,
		UserID:          user.ID,
		TotalAmount:     req.TotalAmount,
		Currency:        currency,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		UserEmail:       req.UserEmail,
		UserPhoneNumber: req.UserPhoneNumber,
	}
	for _, item := range req.Items {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Price * float64(item.Quantity),
		})
	}

	if err := config.DB.Create(&order).Error; err != nil {
		// The primary key decides duplicates, so two concurrent creates with
		// the same UUID cannot both win; the loser surfaces here as a key
		// violation, never as a silent overwrite.
		var existing models.Order
		if lookupErr := config.DB.Select("id").Where("id = ?", req.ID).First(&existing).Error; lookupErr == nil {
			utils.LogError("Order id %s already exists", req.ID)
			utils.Conflict(c, "An order with this id already exists", nil)
			return
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			utils.LogError("Failed to check for existing order %s: %v", req.ID, lookupErr)
		}
		utils.LogError("Failed to create order %s for user ID: %d: %v", req.ID, user.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}

	utils.LogInfo("Created order %s for user ID: %d", order.ID, user.ID)
	utils.Created(c, "Order created", gin.H{
		"success": true,
		"orderId": order.ID,
	})
}

// GET /v1/orders
func ListOrders(c *gin.Context) {
	utils.LogInfo("ListOrders called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var orders []models.Order
	if err := config.DB.Preload("OrderItems").Preload("Payment").
		Where("user_id = ?", user.ID).Order("created_at desc").Find(&orders).Error; err != nil {
		utils.LogError("Failed to list orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}

	utils.Success(c, "Orders retrieved", gin.H{"orders": orders})
}

// GET /v1/orders/:id
func GetOrder(c *gin.Context) {
	utils.LogInfo("GetOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var order models.Order
	if err := config.DB.Preload("OrderItems.Product").Preload("Payment").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		utils.LogError("Order %s not found for user ID: %d", c.Param("id"), user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	utils.Success(c, "Order retrieved", gin.H{"order": order})
}

// GET /v1/orders/:id/status
//
// Data feed for the order-status landing page the payment callback redirects
// to. Looked up by order UUID alone: the redirected browser has no bearer
// token, and a v4 UUID is not guessable.
func GetOrderStatus(c *gin.Context) {
	utils.LogInfo("GetOrderStatus called for order %s", c.Param("id"))

	var order models.Order
	if err := config.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	utils.Success(c, "Order status retrieved", gin.H{
		"order_id":       order.ID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"outcome":        outcomeForStatus(order.Status),
		"total_amount":   order.TotalAmount,
		"currency":       order.Currency,
	})
}
