package controllers

import (
	"strconv"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/products
func ListProducts(c *gin.Context) {
	utils.LogInfo("ListProducts called")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := config.DB.Model(&models.Product{}).Where("is_active = ?", true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count products: %v", err)
		utils.InternalServerError(c, "Failed to fetch products", nil)
		return
	}

	var products []models.Product
	if err := query.Preload("Category").
		Offset((page - 1) * perPage).Limit(perPage).Find(&products).Error; err != nil {
		utils.LogError("Failed to list products: %v", err)
		utils.InternalServerError(c, "Failed to fetch products", nil)
		return
	}

	utils.Success(c, "Products retrieved", gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GET /v1/products/:id
func GetProduct(c *gin.Context) {
	utils.LogInfo("GetProduct called for ID: %s", c.Param("id"))

	var product models.Product
	if err := config.DB.Preload("Category").
		Where("id = ? AND is_active = ?", c.Param("id"), true).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	utils.Success(c, "Product retrieved", gin.H{"product": product})
}
