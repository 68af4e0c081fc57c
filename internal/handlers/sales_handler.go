package handlers

import (
	"fmt"
	"net/http"
	"time"

	"attar-pos/internal/models"
	"attar-pos/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetSales lists sales for a single ?date= or an inclusive ?start=&end=
// range. Without parameters it returns today's sales.
func (h *Handler) GetSales(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if start != "" || end != "" {
		sales, err := h.Repo.SalesByDateRange(start, end)
		if err != nil {
			fail(c, err)
			return
		}
		if sales == nil {
			sales = []models.SaleRecord{}
		}
		c.JSON(http.StatusOK, sales)
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	sales := h.Repo.SalesForDate(date)
	if sales == nil {
		sales = []models.SaleRecord{}
	}
	c.JSON(http.StatusOK, sales)
}

// GetSalesStats aggregates either one day (?date=) or all recorded sales.
func (h *Handler) GetSalesStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.SalesStats(c.Query("date")))
}

// ExportSalesXLSX streams an XLSX workbook of either one day's sales
// (?date=) or everything.
func (h *Handler) ExportSalesXLSX(c *gin.Context) {
	var sales []models.SaleRecord
	filename := "sales_all.xlsx"
	if date := c.Query("date"); date != "" {
		sales = h.Repo.SalesForDate(date)
		filename = fmt.Sprintf("sales_%s.xlsx", date)
	} else {
		sales = h.Repo.Sales()
	}
	if len(sales) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No sales for selected date"})
		return
	}

	workbook, err := repository.SalesWorkbook(sales)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
