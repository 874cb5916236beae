package utils

import (
	"fmt"

	"github.com/ayele-dev/zemcart/models"
	"gorm.io/gorm"
)

// ClearCart removes every cart row for the user. Clearing an already-empty
// cart is a no-op, which keeps the payment-success side effect idempotent
// under webhook redelivery.
func ClearCart(db *gorm.DB, userID uint) error {
	if err := db.Where("user_id = ?", userID).Delete(&models.Cart{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %d: %w", userID, err)
	}
	return nil
}

// GetCartItems returns the user's cart rows with product data preloaded
func GetCartItems(db *gorm.DB, userID uint) ([]models.Cart, error) {
	var items []models.Cart
	if err := db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return items, nil
}

// CartTotal sums the cart at current product prices
func CartTotal(items []models.Cart) float64 {
	var total float64
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}
