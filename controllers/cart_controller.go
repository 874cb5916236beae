package controllers

import (
	"errors"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POST /v1/cart
func AddToCart(c *gin.Context) {
	utils.LogInfo("AddToCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var product models.Product
	if err := config.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if product.Stock < req.Quantity {
		utils.BadRequest(c, "Not enough stock available", nil)
		return
	}

	var item models.Cart
	err := config.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.Cart{UserID: user.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := config.DB.Create(&item).Error; err != nil {
			utils.LogError("Failed to add to cart for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to add to cart", nil)
			return
		}
	case err != nil:
		utils.LogError("Failed to look up cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to add to cart", nil)
		return
	default:
		if err := config.DB.Model(&item).Update("quantity", item.Quantity+req.Quantity).Error; err != nil {
			utils.LogError("Failed to update cart for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
	}

	utils.LogInfo("Cart updated for user ID: %d, product ID: %d", user.ID, req.ProductID)
	utils.Success(c, "Item added to cart", nil)
}

// GET /v1/cart
func GetCart(c *gin.Context) {
	utils.LogInfo("GetCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	items, err := utils.GetCartItems(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to get cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch cart", nil)
		return
	}

	utils.Success(c, "Cart retrieved", gin.H{
		"items": items,
		"total": utils.CartTotal(items),
	})
}

// DELETE /v1/cart/:productId
func RemoveFromCart(c *gin.Context) {
	utils.LogInfo("RemoveFromCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	if err := config.DB.Where("user_id = ? AND product_id = ?", user.ID, c.Param("productId")).
		Delete(&models.Cart{}).Error; err != nil {
		utils.LogError("Failed to remove cart item for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to remove item", nil)
		return
	}

	utils.Success(c, "Item removed from cart", nil)
}
