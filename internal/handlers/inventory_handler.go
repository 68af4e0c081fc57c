package handlers

import (
	"net/http"

	"attar-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetInventory(c *gin.Context) {
	items := h.Repo.Inventory()
	if items == nil {
		items = []models.InventoryItem{}
	}
	c.JSON(http.StatusOK, items)
}

type NewItemRequest struct {
	Name  string          `json:"name" binding:"required"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func (h *Handler) AddInventoryItem(c *gin.Context) {
	var input NewItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid price"})
		return
	}
	if input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid stock quantity"})
		return
	}

	item := models.InventoryItem{
		ID:    uuid.NewString(),
		Name:  input.Name,
		Type:  input.Type,
		Price: input.Price,
		Stock: input.Stock,
	}
	if err := h.Repo.AddInventoryItem(item); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	var patch models.InventoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	id := c.Param("id")
	if err := h.Repo.UpdateInventoryItem(id, patch); err != nil {
		fail(c, err)
		return
	}
	item, _ := h.Repo.FindItem(id)
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "item": item})
}

func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	if err := h.Repo.DeleteInventoryItem(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *Handler) AdjustStock(c *gin.Context) {
	var input AdjustStockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.Repo.AdjustStock(c.Param("id"), input.Delta); err != nil {
		fail(c, err)
		return
	}
	item, _ := h.Repo.FindItem(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Stock adjusted", "item": item})
}
