package models

import "fmt"

// Issues lists everything wrong with an inventory item. The index is only
// used to label the messages; both the save-filter path and validateData
// share this one check so they can never disagree.
func (i InventoryItem) Issues(index int) []string {
	var issues []string
	if i.ID == "" {
		issues = append(issues, fmt.Sprintf("Inventory item %d missing ID", index))
	}
	if i.Name == "" {
		issues = append(issues, fmt.Sprintf("Inventory item %d missing name", index))
	}
	if i.Price.IsNegative() {
		issues = append(issues, fmt.Sprintf("Inventory item %d invalid price", index))
	}
	if i.Stock < 0 {
		issues = append(issues, fmt.Sprintf("Inventory item %d invalid stock", index))
	}
	return issues
}

// Valid reports whether the item carries the minimum fields to be persisted.
func (i InventoryItem) Valid() bool {
	return len(i.Issues(0)) == 0
}

// Issues lists everything wrong with a sale record.
func (s SaleRecord) Issues(index int) []string {
	var issues []string
	if s.ID == "" {
		issues = append(issues, fmt.Sprintf("Sale %d missing ID", index))
	}
	if s.Date == "" {
		issues = append(issues, fmt.Sprintf("Sale %d missing date", index))
	}
	if s.Items == nil {
		issues = append(issues, fmt.Sprintf("Sale %d invalid items", index))
	}
	return issues
}

// Valid reports whether the sale carries the minimum fields to be kept.
func (s SaleRecord) Valid() bool {
	return len(s.Issues(0)) == 0
}
