package handlers

import (
	"net/http"
	"time"

	"attar-pos/internal/billing"
	"attar-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// GetBill returns the user's current bill lines, the totals for the given
// discount/gst query percentages, and the invoice number the next sale
// would get.
func (h *Handler) GetBill(c *gin.Context) {
	user := h.requestUser(c)
	lines := h.Engine.Bill(user.Username)
	if lines == nil {
		lines = []models.BillLine{}
	}
	totals := billing.ComputeTotals(lines, percentQuery(c, "discount"), percentQuery(c, "gst"))

	c.JSON(http.StatusOK, gin.H{
		"lines":         lines,
		"totals":        totals,
		"amountInWords": billing.AmountToWordsIndian(totals.GrandTotal),
		"nextInvoice":   h.Seq.PeekNext(time.Now().Year()),
	})
}

type AddLineRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Qty    int    `json:"qty" binding:"required"`
}

func (h *Handler) AddBillLine(c *gin.Context) {
	var input AddLineRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user := h.requestUser(c)
	if err := h.Engine.AddLine(user.Username, input.ItemID, input.Qty); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": h.Engine.Bill(user.Username)})
}

func (h *Handler) RemoveBillLine(c *gin.Context) {
	user := h.requestUser(c)
	h.Engine.RemoveLine(user.Username, c.Param("itemId"))
	c.JSON(http.StatusOK, gin.H{"lines": h.Engine.Bill(user.Username)})
}

func (h *Handler) ClearBill(c *gin.Context) {
	user := h.requestUser(c)
	h.Engine.ClearBill(user.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Bill cleared"})
}

func (h *Handler) GetTotals(c *gin.Context) {
	user := h.requestUser(c)
	totals := h.Engine.Totals(user.Username, percentQuery(c, "discount"), percentQuery(c, "gst"))
	c.JSON(http.StatusOK, gin.H{
		"totals":        totals,
		"amountInWords": billing.AmountToWordsIndian(totals.GrandTotal),
	})
}

// Checkout finalizes the current bill into a sale.
func (h *Handler) Checkout(c *gin.Context) {
	var input billing.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user := h.requestUser(c)
	sale, err := h.Engine.ConfirmSale(user, input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Sale confirmed",
		"sale":          sale,
		"amountInWords": billing.AmountToWordsIndian(sale.Totals.GrandTotal),
	})
}
