// Package repository exposes typed access to every persisted collection:
// inventory, sales, users, settings, backups. All reads fall back to sane
// defaults; all writes go through the store's quota handling.
package repository

import (
	"errors"
	"log"
	"time"

	"attar-pos/internal/invoice"
	"attar-pos/internal/models"
	"attar-pos/internal/store"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrCapacityExceeded = errors.New("collection capacity exceeded")
	ErrInvalidFormat    = errors.New("invalid data format")
	ErrNegativeStock    = errors.New("stock cannot go negative")
	ErrUserExists       = errors.New("user already exists")
)

type Repository struct {
	st  *store.Store
	seq *invoice.Sequencer
}

func New(st *store.Store, seq *invoice.Sequencer) *Repository {
	return &Repository{st: st, seq: seq}
}

// Store exposes the underlying persistence layer for usage reporting.
func (r *Repository) Store() *store.Store { return r.st }

// Sequencer exposes the invoice counters bound to this repository.
func (r *Repository) Sequencer() *invoice.Sequencer { return r.seq }

// ---- Inventory ----

func (r *Repository) Inventory() []models.InventoryItem {
	var items []models.InventoryItem
	r.st.Get(store.KeyInventory, &items)
	return items
}

func (r *Repository) FindItem(id string) (models.InventoryItem, bool) {
	for _, it := range r.Inventory() {
		if it.ID == id {
			return it, true
		}
	}
	return models.InventoryItem{}, false
}

// SaveInventory persists the list after dropping items that fail schema
// validation. Either the filtered list is written or nothing is.
func (r *Repository) SaveInventory(items []models.InventoryItem) error {
	valid := make([]models.InventoryItem, 0, len(items))
	for _, it := range items {
		if it.Valid() {
			valid = append(valid, it)
		}
	}
	if len(valid) != len(items) {
		log.Printf("repository: filtered out %d invalid inventory items", len(items)-len(valid))
	}
	return r.st.Set(store.KeyInventory, valid)
}

func (r *Repository) AddInventoryItem(item models.InventoryItem) error {
	items := r.Inventory()
	if len(items) >= r.st.Limits().MaxInventoryItems {
		return ErrCapacityExceeded
	}
	return r.SaveInventory(append(items, item))
}

func (r *Repository) UpdateInventoryItem(id string, patch models.InventoryPatch) error {
	items := r.Inventory()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			items[i].Name = *patch.Name
		}
		if patch.Type != nil {
			items[i].Type = *patch.Type
		}
		if patch.Price != nil {
			items[i].Price = *patch.Price
		}
		if patch.Stock != nil {
			items[i].Stock = *patch.Stock
		}
		return r.SaveInventory(items)
	}
	return ErrNotFound
}

func (r *Repository) DeleteInventoryItem(id string) error {
	items := r.Inventory()
	kept := items[:0:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return r.SaveInventory(kept)
}

// AdjustStock moves an item's stock by delta. A move below zero is
// rejected, never clamped silently.
func (r *Repository) AdjustStock(id string, delta int) error {
	items := r.Inventory()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		next := items[i].Stock + delta
		if next < 0 {
			return ErrNegativeStock
		}
		items[i].Stock = next
		return r.SaveInventory(items)
	}
	return ErrNotFound
}

// ---- Sales ----

func (r *Repository) Sales() []models.SaleRecord {
	var sales []models.SaleRecord
	r.st.Get(store.KeySales, &sales)
	return sales
}

func (r *Repository) SaveSales(sales []models.SaleRecord) error {
	return r.st.Set(store.KeySales, sales)
}

func (r *Repository) AddSale(sale models.SaleRecord) error {
	return r.SaveSales(append(r.Sales(), sale))
}

// SalesForDate returns the sales whose calendar date matches exactly.
func (r *Repository) SalesForDate(date string) []models.SaleRecord {
	var matched []models.SaleRecord
	for _, s := range r.Sales() {
		if s.Date == date {
			matched = append(matched, s)
		}
	}
	return matched
}

// SalesByDateRange filters inclusively on the sale date. Matches come back
// in whatever order they were stored; callers sort if order matters.
func (r *Repository) SalesByDateRange(start, end string) ([]models.SaleRecord, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	var matched []models.SaleRecord
	for _, s := range r.Sales() {
		d, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			continue
		}
		if !d.Before(from) && !d.After(to) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// SalesStats aggregates the day's (or, with an empty date, all-time) sales.
type SalesStats struct {
	TotalSales        int             `json:"totalSales"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalItems        int             `json:"totalItems"`
	TotalDiscount     decimal.Decimal `json:"totalDiscount"`
	TotalGST          decimal.Decimal `json:"totalGST"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

func (r *Repository) SalesStats(date string) SalesStats {
	sales := r.Sales()
	if date != "" {
		sales = r.SalesForDate(date)
	}
	stats := SalesStats{
		TotalSales:        len(sales),
		TotalRevenue:      decimal.Zero,
		TotalDiscount:     decimal.Zero,
		TotalGST:          decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, s := range sales {
		stats.TotalRevenue = stats.TotalRevenue.Add(s.Totals.GrandTotal)
		stats.TotalItems += s.Totals.TotalQty
		stats.TotalDiscount = stats.TotalDiscount.Add(s.Totals.DiscountAmount)
		stats.TotalGST = stats.TotalGST.Add(s.Totals.GSTAmount)
	}
	if stats.TotalSales > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.TotalSales)))
	}
	return stats
}

// ---- Settings ----

func (r *Repository) Settings() models.Settings {
	s := models.DefaultSettings()
	r.st.Get(store.KeySettings, &s)
	return s
}

func (r *Repository) SaveSettings(s models.Settings) error {
	return r.st.Set(store.KeySettings, s)
}

// ---- Users ----

func (r *Repository) Users() []models.User {
	var users []models.User
	r.st.Get(store.KeyUsers, &users)
	return users
}

func (r *Repository) SaveUsers(users []models.User) error {
	return r.st.Set(store.KeyUsers, users)
}

func (r *Repository) FindUser(username string) (models.User, bool) {
	for _, u := range r.Users() {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

func (r *Repository) AddUser(u models.User) error {
	if _, exists := r.FindUser(u.Username); exists {
		return ErrUserExists
	}
	return r.SaveUsers(append(r.Users(), u))
}

func (r *Repository) CurrentUser() (models.User, bool) {
	var u models.User
	if !r.st.Get(store.KeyCurrentUser, &u) || u.Username == "" {
		return models.User{}, false
	}
	return u, true
}

func (r *Repository) SaveCurrentUser(u models.User) error {
	return r.st.Set(store.KeyCurrentUser, u.Public())
}

func (r *Repository) ClearCurrentUser() error {
	return r.st.Remove(store.KeyCurrentUser)
}

// ---- Validation & repair ----

type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateData scans both collections and reports issues without touching
// anything.
func (r *Repository) ValidateData() ValidationReport {
	var issues []string
	for i, item := range r.Inventory() {
		issues = append(issues, item.Issues(i)...)
	}
	for i, sale := range r.Sales() {
		issues = append(issues, sale.Issues(i)...)
	}
	return ValidationReport{Valid: len(issues) == 0, Issues: issues}
}

// RepairData drops every record failing minimum-field validation from both
// collections and persists what is left. Destructive; there is no undo
// short of restoring a backup.
func (r *Repository) RepairData() (int, error) {
	removed := 0

	inventory := r.Inventory()
	keptItems := inventory[:0:0]
	for _, it := range inventory {
		if it.Valid() {
			keptItems = append(keptItems, it)
		} else {
			removed++
		}
	}
	if err := r.SaveInventory(keptItems); err != nil {
		return removed, err
	}

	sales := r.Sales()
	keptSales := sales[:0:0]
	for _, s := range sales {
		if s.Valid() {
			keptSales = append(keptSales, s)
		} else {
			removed++
		}
	}
	if err := r.SaveSales(keptSales); err != nil {
		return removed, err
	}
	return removed, nil
}
