package handlers

import (
	"net/http"

	"attar-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// GetStorageInfo reports how full the persistent store is, per key.
func (h *Handler) GetStorageInfo(c *gin.Context) {
	info, err := h.Store.Info()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ValidateData reports integrity issues without changing anything.
func (h *Handler) ValidateData(c *gin.Context) {
	report := h.Repo.ValidateData()
	if report.Issues == nil {
		report.Issues = []string{}
	}
	c.JSON(http.StatusOK, report)
}

// RepairData removes invalid records from both collections. Irreversible
// without a backup; the client is expected to warn before calling it.
func (h *Handler) RepairData(c *gin.Context) {
	removed, err := h.Repo.RepairData()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repaired": removed})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var input models.Settings
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.Repo.SaveSettings(input); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved", "settings": input})
}
