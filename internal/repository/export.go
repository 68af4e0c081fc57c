package repository

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"attar-pos/internal/models"
	"attar-pos/internal/store"

	"github.com/xuri/excelize/v2"
)

// ExportData serializes the full repository state as an indented JSON
// document suitable for re-import.
func (r *Repository) ExportData() ([]byte, error) {
	settings := r.Settings()
	payload := models.ExportPayload{
		Version:          store.Version,
		ExportDate:       time.Now().UTC().Format(time.RFC3339),
		Inventory:        r.Inventory(),
		Sales:            r.Sales(),
		Settings:         &settings,
		InvoiceSequences: r.seq.AllSequences(),
	}
	return json.MarshalIndent(payload, "", "  ")
}

// ImportData loads an export document. With merge, inventory and sales are
// concatenated onto the existing data (duplicate ids are possible and
// accepted); settings and invoice sequences are only ever replaced, never
// merged, so they are skipped in merge mode.
func (r *Repository) ImportData(payload []byte, merge bool) error {
	var data models.ExportPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return ErrInvalidFormat
	}
	if data.Version == "" {
		return ErrInvalidFormat
	}

	if data.Inventory != nil {
		items := data.Inventory
		if merge {
			items = append(r.Inventory(), items...)
		}
		if err := r.SaveInventory(items); err != nil {
			return err
		}
	}

	if data.Sales != nil {
		sales := data.Sales
		if merge {
			sales = append(r.Sales(), sales...)
		}
		if err := r.SaveSales(sales); err != nil {
			return err
		}
	}

	if data.Settings != nil && !merge {
		if err := r.SaveSettings(*data.Settings); err != nil {
			return err
		}
	}

	if data.InvoiceSequences != nil && !merge {
		for year, seq := range data.InvoiceSequences {
			if err := r.seq.SetSequence(year, seq); err != nil {
				return err
			}
		}
	}
	return nil
}

// ImportFromReader reads the whole payload first and only then imports it.
// A read failure leaves stored data untouched.
func (r *Repository) ImportFromReader(rd io.Reader, merge bool) error {
	payload, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	return r.ImportData(payload, merge)
}

var salesHeader = []string{
	"Date", "Time", "Invoice", "Customer", "CustomerMobile", "CreatedBy",
	"TotalQty", "Subtotal", "DiscountPercent", "DiscountAmount",
	"Taxable", "GSTPercent", "GSTAmount", "GrandTotal",
}

// SalesRows flattens sales into spreadsheet rows, one per sale, header
// first. Monetary fields are fixed to two decimals as text.
func SalesRows(sales []models.SaleRecord) [][]string {
	rows := [][]string{salesHeader}
	for _, s := range sales {
		timeStr := ""
		if ts, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
			timeStr = ts.Format("15:04:05")
		}
		createdBy := s.CreatedByName
		if createdBy == "" {
			createdBy = s.CreatedBy
		}
		rows = append(rows, []string{
			s.Date,
			timeStr,
			s.InvoiceNumber,
			s.CustomerName,
			s.CustomerMobile,
			createdBy,
			strconv.Itoa(s.Totals.TotalQty),
			s.Totals.Subtotal.StringFixed(2),
			s.Totals.DiscountPercent.StringFixed(2),
			s.Totals.DiscountAmount.StringFixed(2),
			s.Totals.Taxable.StringFixed(2),
			s.Totals.GSTPercent.StringFixed(2),
			s.Totals.GSTAmount.StringFixed(2),
			s.Totals.GrandTotal.StringFixed(2),
		})
	}
	return rows
}

// SalesWorkbook builds an XLSX file with one "Sales" sheet from the given
// records.
func SalesWorkbook(sales []models.SaleRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, row := range SalesRows(sales) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
