// Package billing owns the in-progress bill for each till user and turns a
// bill into a persisted sale.
package billing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"attar-pos/internal/invoice"
	"attar-pos/internal/models"
	"attar-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyBill         = errors.New("no items in bill")
	ErrItemRemoved       = errors.New("item no longer exists in inventory")
)

// Engine holds one live bill per user. A bill is transient; nothing is
// persisted until the sale is confirmed.
type Engine struct {
	repo *repository.Repository
	seq  *invoice.Sequencer

	mu    sync.Mutex
	bills map[string][]models.BillLine
}

func NewEngine(repo *repository.Repository, seq *invoice.Sequencer) *Engine {
	return &Engine{
		repo:  repo,
		seq:   seq,
		bills: map[string][]models.BillLine{},
	}
}

// Bill returns a copy of the user's current bill lines.
func (e *Engine) Bill(user string) []models.BillLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.BillLine(nil), e.bills[user]...)
}

// AddLine puts qty of an item on the bill, merging into an existing line
// for the same item. The rate is captured when the line is first added and
// is not re-read on merge, so a started bill stays internally consistent.
// The quantity on the bill can never exceed the item's current stock.
func (e *Engine) AddLine(user, itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.repo.FindItem(itemID)
	if !ok {
		return repository.ErrNotFound
	}

	lines := e.bills[user]
	idx := -1
	alreadyInBill := 0
	for i, line := range lines {
		if line.ItemID == itemID {
			idx = i
			alreadyInBill = line.Qty
			break
		}
	}

	if alreadyInBill+qty > item.Stock {
		return fmt.Errorf("not enough stock for %q: available %d, already in bill %d: %w",
			item.Name, item.Stock, alreadyInBill, ErrInsufficientStock)
	}

	if idx >= 0 {
		lines[idx].Qty += qty
		lines[idx].Amount = lines[idx].Rate.Mul(decimal.NewFromInt(int64(lines[idx].Qty)))
	} else {
		lines = append(lines, models.BillLine{
			ItemID: item.ID,
			Name:   item.Name,
			Qty:    qty,
			Rate:   item.Price,
			Amount: item.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	e.bills[user] = lines
	return nil
}

// RemoveLine drops the line for an item; a no-op when absent.
func (e *Engine) RemoveLine(user, itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lines := e.bills[user]
	kept := lines[:0:0]
	for _, line := range lines {
		if line.ItemID != itemID {
			kept = append(kept, line)
		}
	}
	e.bills[user] = kept
}

// ClearBill abandons the user's bill without selling anything.
func (e *Engine) ClearBill(user string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bills, user)
}

// ComputeTotals derives the bill figures from the lines and the two
// user-supplied percentages. Pure: same inputs, same outputs. Negative
// percentages are clamped to zero; no rounding happens here, display
// rounding is the presentation layer's business.
func ComputeTotals(lines []models.BillLine, discountPercent, gstPercent decimal.Decimal) models.Totals {
	if discountPercent.IsNegative() {
		discountPercent = decimal.Zero
	}
	if gstPercent.IsNegative() {
		gstPercent = decimal.Zero
	}

	subtotal := decimal.Zero
	totalQty := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount)
		totalQty += line.Qty
	}

	hundred := decimal.NewFromInt(100)
	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	gstAmount := taxable.Mul(gstPercent).Div(hundred)

	return models.Totals{
		TotalQty:        totalQty,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		Taxable:         taxable,
		GSTPercent:      gstPercent,
		GSTAmount:       gstAmount,
		GrandTotal:      taxable.Add(gstAmount),
	}
}

// Totals computes the figures for the user's current bill.
func (e *Engine) Totals(user string, discountPercent, gstPercent decimal.Decimal) models.Totals {
	return ComputeTotals(e.Bill(user), discountPercent, gstPercent)
}

// SaleInput carries everything the cashier typed in at confirmation time.
type SaleInput struct {
	CustomerName    string          `json:"customerName"`
	CustomerMobile  string          `json:"customerMobile"`
	Date            string          `json:"date"`          // YYYY-MM-DD, today when empty
	InvoiceNumber   string          `json:"invoiceNumber"` // kept as-is when pre-filled
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	GSTPercent      decimal.Decimal `json:"gstPercent"`
}

// ConfirmSale finalizes the user's bill: re-validate every line against
// current stock, decrement inventory, assign an invoice number, append the
// sale record and clear the bill. Validation failures abort before any
// mutation. A persistence failure after the inventory write is NOT rolled
// back; that inconsistency window is a known limitation of the design.
func (e *Engine) ConfirmSale(user models.User, in SaleInput) (models.SaleRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lines := e.bills[user.Username]
	if len(lines) == 0 {
		return models.SaleRecord{}, ErrEmptyBill
	}

	items := e.repo.Inventory()
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}

	// Stock may have moved since the lines were added; check everything
	// before touching anything.
	for _, line := range lines {
		idx, ok := byID[line.ItemID]
		if !ok {
			return models.SaleRecord{}, fmt.Errorf("item %q: %w", line.Name, ErrItemRemoved)
		}
		if line.Qty > items[idx].Stock {
			return models.SaleRecord{}, fmt.Errorf("not enough stock for %q: available %d, in bill %d: %w",
				line.Name, items[idx].Stock, line.Qty, ErrInsufficientStock)
		}
	}

	for _, line := range lines {
		items[byID[line.ItemID]].Stock -= line.Qty
	}
	if err := e.repo.SaveInventory(items); err != nil {
		return models.SaleRecord{}, err
	}

	totals := ComputeTotals(lines, in.DiscountPercent, in.GSTPercent)

	customerName := in.CustomerName
	if customerName == "" {
		customerName = "Customer"
	}
	now := time.Now()
	date := in.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	invoiceNumber, err := e.seq.Assign(now.Year(), in.InvoiceNumber)
	if err != nil {
		return models.SaleRecord{}, err
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Username
	}

	record := models.SaleRecord{
		ID:             uuid.NewString(),
		Date:           date,
		Timestamp:      now.UTC().Format(time.RFC3339),
		InvoiceNumber:  invoiceNumber,
		CustomerName:   customerName,
		CustomerMobile: in.CustomerMobile,
		CreatedBy:      user.Username,
		CreatedByName:  displayName,
		Totals:         totals,
		Items:          append([]models.BillLine(nil), lines...),
	}
	if err := e.repo.AddSale(record); err != nil {
		// Inventory is already decremented and persisted at this point.
		return models.SaleRecord{}, err
	}

	delete(e.bills, user.Username)
	return record, nil
}
