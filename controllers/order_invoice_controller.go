package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/models"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// GET /v1/orders/:id/invoice
//
// DownloadInvoice generates and returns a PDF invoice. Only paid orders have
// an invoice; anything else is a 409 so clients can tell "not yet" from
// "no such order".
func DownloadInvoice(c *gin.Context) {
	utils.LogInfo("DownloadInvoice called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var order models.Order
	if err := config.DB.Preload("OrderItems.Product").Preload("Payment").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&order).Error; err != nil {
		utils.LogError("Order %s not found for invoice, user ID: %d", c.Param("id"), user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.Status != models.OrderStatusPaidSuccess {
		utils.LogError("Invoice requested for unpaid order %s (status %s)", order.ID, order.Status)
		utils.Conflict(c, "Invoice is only available for paid orders", nil)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "ZemCart")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Carrefour Toyota, Cotonou, Benin")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@zemcart.shop")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(95, 8, "Order ID: "+order.ID)
	pdf.Cell(60, 8, "Order Date: "+order.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(95, 8, "Payment Method: "+order.PaymentMethod)
	pdf.Cell(60, 8, "Status: "+order.Status)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Shipping Address:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.ShippingAddress.FullName)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.ShippingAddress.Line1)
	pdf.Ln(6)
	if order.ShippingAddress.Line2 != "" {
		pdf.Cell(100, 8, order.ShippingAddress.Line2)
		pdf.Ln(6)
	}
	pdf.Cell(100, 8, order.ShippingAddress.City+", "+order.ShippingAddress.Country)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(70, 8, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	for _, item := range order.OrderItems {
		pdf.CellFormat(70, 8, item.Product.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.0f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.0f", item.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(120, 10, "Grand Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 10, fmt.Sprintf("%.0f %s", order.TotalAmount, order.Currency), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for shopping with ZemCart!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render invoice PDF for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate invoice", nil)
		return
	}
	utils.LogInfo("PDF invoice generated for order %s", order.ID)

	c.Header("Content-Disposition", "attachment; filename=invoice-"+order.ID+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
