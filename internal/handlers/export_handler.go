package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportJSON downloads the full repository state as one JSON document.
func (h *Handler) ExportJSON(c *gin.Context) {
	data, err := h.Repo.ExportData()
	if err != nil {
		fail(c, err)
		return
	}
	filename := fmt.Sprintf("attar_export_%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportJSON loads an export file. ?merge=true concatenates inventory and
// sales onto the existing data; otherwise everything is replaced.
func (h *Handler) ImportJSON(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()

	merge := c.Query("merge") == "true"
	if err := h.Repo.ImportFromReader(f, merge); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data imported successfully"})
}
