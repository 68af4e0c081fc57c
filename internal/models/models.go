package models

import (
	"github.com/shopspring/decimal"
)

// User - The person operating the till. Stored with a bcrypt hash in the
// users collection; the hash is stripped before anything leaves the API.
type User struct {
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"` // 'admin', 'cashier'
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Public returns a copy safe to hand to clients or store as current_user.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// InventoryItem - one stocked product. Owned by the repository; stock is
// only changed through repository operations or a confirmed sale.
type InventoryItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type"` // category, e.g. 'Attar', 'Spray'
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// InventoryPatch enumerates the fields UpdateInventoryItem may change.
// Nil pointers leave the field alone.
type InventoryPatch struct {
	Name  *string          `json:"name"`
	Type  *string          `json:"type"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// BillLine - one row of the in-progress bill. Name and rate are snapshots
// taken when the line is first added, so a bill stays internally consistent
// even if the inventory price changes mid-transaction.
type BillLine struct {
	ItemID string          `json:"itemId"`
	Name   string          `json:"name"`
	Qty    int             `json:"qty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals - derived figures for a bill. Always recomputed from the lines
// plus the user-supplied percentages, never stored on their own.
type Totals struct {
	TotalQty        int             `json:"totalQty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	Taxable         decimal.Decimal `json:"taxable"`
	GSTPercent      decimal.Decimal `json:"gstPercent"`
	GSTAmount       decimal.Decimal `json:"gstAmount"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
}

// SaleRecord - a finalized bill. Created once at sale confirmation and
// immutable afterwards.
type SaleRecord struct {
	ID             string     `json:"id"`
	Date           string     `json:"date"`      // YYYY-MM-DD
	Timestamp      string     `json:"timestamp"` // RFC 3339 instant
	InvoiceNumber  string     `json:"invoiceNumber"`
	CustomerName   string     `json:"customerName"`
	CustomerMobile string     `json:"customerMobile,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedByName  string     `json:"createdByName"`
	Totals         Totals     `json:"totals"`
	Items          []BillLine `json:"items"`
}

// Settings - shop metadata and billing defaults, one mutable record.
type Settings struct {
	ShopName               string          `json:"shopName"`
	ShopAddress            string          `json:"shopAddress"`
	ShopPhone              string          `json:"shopPhone"`
	ShopGST                string          `json:"shopGST"`
	DefaultGSTPercent      decimal.Decimal `json:"defaultGSTPercent"`
	DefaultDiscountPercent decimal.Decimal `json:"defaultDiscountPercent"`
	Currency               string          `json:"currency"`
	DateFormat             string          `json:"dateFormat"`
	Theme                  string          `json:"theme"`
}

// DefaultSettings are the values used until the shop saves its own.
func DefaultSettings() Settings {
	return Settings{
		ShopName:               "SOOFI ATTARS",
		ShopAddress:            "6/ 723, 2nd Main Road, Muthamizh nagar, Kodungaiyur, Chennai - 600118",
		ShopPhone:              "+91-8754143194",
		ShopGST:                "",
		DefaultGSTPercent:      decimal.Zero,
		DefaultDiscountPercent: decimal.Zero,
		Currency:               "₹",
		DateFormat:             "YYYY-MM-DD",
		Theme:                  "light",
	}
}

// Backup - a full snapshot of every persisted collection.
type Backup struct {
	Name      string     `json:"name"`
	Timestamp int64      `json:"timestamp"` // unix milliseconds, doubles as the key suffix
	Version   string     `json:"version"`
	Data      BackupData `json:"data"`
}

type BackupData struct {
	Inventory        []InventoryItem `json:"inventory"`
	Sales            []SaleRecord    `json:"sales"`
	Settings         Settings        `json:"settings"`
	InvoiceSequences map[int]int     `json:"invoiceSequences"`
}

// ExportPayload is the JSON document written by export and read by import.
type ExportPayload struct {
	Version          string          `json:"version"`
	ExportDate       string          `json:"exportDate"`
	Inventory        []InventoryItem `json:"inventory"`
	Sales            []SaleRecord    `json:"sales"`
	Settings         *Settings       `json:"settings,omitempty"`
	InvoiceSequences map[int]int     `json:"invoiceSequences,omitempty"`
}
