package repository

import (
	"strings"
	"testing"

	"attar-pos/internal/invoice"
	"attar-pos/internal/models"
	"attar-pos/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, cfg store.Config) (*Repository, *store.MemBackend) {
	t.Helper()
	mem := store.NewMem()
	st := store.New(mem, cfg)
	require.True(t, st.Available())
	return New(st, invoice.New(st)), mem
}

func item(id, name string, price int64, stock int) models.InventoryItem {
	return models.InventoryItem{
		ID:    id,
		Name:  name,
		Type:  "Attar",
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}
}

func TestSaveInventoryFiltersInvalidItems(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())

	items := []models.InventoryItem{
		item("a", "Oud", 500, 10),
		{ID: "", Name: "NoID", Price: decimal.NewFromInt(1)},
		{ID: "b", Name: "", Price: decimal.NewFromInt(1)},
		{ID: "c", Name: "Bad price", Price: decimal.NewFromInt(-5)},
	}
	require.NoError(t, repo.SaveInventory(items))

	saved := repo.Inventory()
	require.Len(t, saved, 1)
	assert.Equal(t, "Oud", saved[0].Name)
}

func TestAddInventoryItemCapacity(t *testing.T) {
	repo, _ := newTestRepo(t, store.Config{MaxInventoryItems: 2})

	require.NoError(t, repo.AddInventoryItem(item("a", "One", 10, 1)))
	require.NoError(t, repo.AddInventoryItem(item("b", "Two", 10, 1)))
	assert.ErrorIs(t, repo.AddInventoryItem(item("c", "Three", 10, 1)), ErrCapacityExceeded)
	assert.Len(t, repo.Inventory(), 2)
}

func TestUpdateInventoryItemPatchesOnlySetFields(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveInventory([]models.InventoryItem{item("a", "Oud", 500, 10)}))

	newPrice := decimal.NewFromInt(650)
	require.NoError(t, repo.UpdateInventoryItem("a", models.InventoryPatch{Price: &newPrice}))

	got, ok := repo.FindItem("a")
	require.True(t, ok)
	assert.Equal(t, "Oud", got.Name)
	assert.True(t, got.Price.Equal(newPrice))
	assert.Equal(t, 10, got.Stock)
}

func TestUpdateInventoryItemNotFound(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	name := "Renamed"
	assert.ErrorIs(t, repo.UpdateInventoryItem("ghost", models.InventoryPatch{Name: &name}), ErrNotFound)
}

func TestDeleteInventoryItem(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveInventory([]models.InventoryItem{
		item("a", "Oud", 500, 10),
		item("b", "Rose", 300, 4),
	}))

	require.NoError(t, repo.DeleteInventoryItem("a"))
	saved := repo.Inventory()
	require.Len(t, saved, 1)
	assert.Equal(t, "b", saved[0].ID)
}

func TestAdjustStockRejectsNegative(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveInventory([]models.InventoryItem{item("a", "Oud", 500, 3)}))

	assert.ErrorIs(t, repo.AdjustStock("a", -4), ErrNegativeStock)
	got, _ := repo.FindItem("a")
	assert.Equal(t, 3, got.Stock)

	require.NoError(t, repo.AdjustStock("a", -3))
	got, _ = repo.FindItem("a")
	assert.Equal(t, 0, got.Stock)

	assert.ErrorIs(t, repo.AdjustStock("ghost", 1), ErrNotFound)
}

func sale(id, date, timestamp string, grandTotal int64, qty int) models.SaleRecord {
	return models.SaleRecord{
		ID:        id,
		Date:      date,
		Timestamp: timestamp,
		Items:     []models.BillLine{},
		Totals: models.Totals{
			TotalQty:       qty,
			GrandTotal:     decimal.NewFromInt(grandTotal),
			DiscountAmount: decimal.NewFromInt(5),
			GSTAmount:      decimal.NewFromInt(9),
		},
	}
}

func TestSalesByDateRangeInclusive(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveSales([]models.SaleRecord{
		sale("1", "2024-01-01", "2024-01-01T09:00:00Z", 100, 1),
		sale("2", "2024-01-15", "2024-01-15T09:00:00Z", 200, 2),
		sale("3", "2024-01-31", "2024-01-31T09:00:00Z", 300, 3),
		sale("4", "2024-02-01", "2024-02-01T09:00:00Z", 400, 4),
	}))

	got, err := repo.SalesByDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, got, 3)

	_, err = repo.SalesByDateRange("not-a-date", "2024-01-31")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSalesForDate(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveSales([]models.SaleRecord{
		sale("1", "2024-01-01", "2024-01-01T09:00:00Z", 100, 1),
		sale("2", "2024-01-02", "2024-01-02T09:00:00Z", 200, 2),
	}))

	got := repo.SalesForDate("2024-01-02")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Empty(t, repo.SalesForDate("2024-03-01"))
}

func TestSalesStats(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveSales([]models.SaleRecord{
		sale("1", "2024-01-01", "2024-01-01T09:00:00Z", 100, 2),
		sale("2", "2024-01-01", "2024-01-01T10:00:00Z", 300, 3),
		sale("3", "2024-01-02", "2024-01-02T09:00:00Z", 999, 9),
	}))

	stats := repo.SalesStats("2024-01-01")
	assert.Equal(t, 2, stats.TotalSales)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, 5, stats.TotalItems)
	assert.True(t, stats.TotalDiscount.Equal(decimal.NewFromInt(10)))
	assert.True(t, stats.TotalGST.Equal(decimal.NewFromInt(18)))
	assert.True(t, stats.AverageOrderValue.Equal(decimal.NewFromInt(200)))

	empty := repo.SalesStats("2030-01-01")
	assert.Equal(t, 0, empty.TotalSales)
	assert.True(t, empty.AverageOrderValue.IsZero())
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())

	settings := repo.Settings()
	assert.Equal(t, "SOOFI ATTARS", settings.ShopName)

	settings.ShopName = "New Name"
	require.NoError(t, repo.SaveSettings(settings))
	assert.Equal(t, "New Name", repo.Settings().ShopName)
}

func TestCorruptSalesDoNotBlockInventory(t *testing.T) {
	repo, mem := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveInventory([]models.InventoryItem{item("a", "Oud", 500, 10)}))

	mem.Data["attar_sales_v1"] = "{{{{"

	assert.Nil(t, repo.Sales())
	assert.Len(t, repo.Inventory(), 1)
}

func TestValidateDataReportsWithoutMutating(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())

	// Seed directly through the store to bypass the save-time filter.
	st := repo.Store()
	require.NoError(t, st.Set(store.KeyInventory, []models.InventoryItem{
		item("a", "Oud", 500, 10),
		{ID: "", Name: "Broken", Price: decimal.NewFromInt(1)},
	}))
	require.NoError(t, st.Set(store.KeySales, []models.SaleRecord{
		{ID: "s1", Date: "", Items: []models.BillLine{}},
	}))

	report := repo.ValidateData()
	assert.False(t, report.Valid)
	assert.Contains(t, report.Issues, "Inventory item 1 missing ID")
	assert.Contains(t, report.Issues, "Sale 0 missing date")

	// Pure read: nothing was removed.
	assert.Len(t, repo.Inventory(), 2)
	assert.Len(t, repo.Sales(), 1)
}

func TestRepairDataRemovesInvalidRecords(t *testing.T) {
	repo, _ := newTestRepo(t, store.DefaultConfig())

	st := repo.Store()
	require.NoError(t, st.Set(store.KeyInventory, []models.InventoryItem{
		item("a", "Oud", 500, 10),
		{ID: "", Name: "Broken", Price: decimal.NewFromInt(1)},
	}))
	require.NoError(t, st.Set(store.KeySales, []models.SaleRecord{
		sale("s1", "2024-01-01", "2024-01-01T09:00:00Z", 100, 1),
		{ID: "", Date: "2024-01-02", Items: []models.BillLine{}},
	}))

	removed, err := repo.RepairData()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, repo.Inventory(), 1)
	assert.Len(t, repo.Sales(), 1)
	assert.True(t, repo.ValidateData().Valid)
}

func TestUsers(t *testing.T) {
	repo, mem := newTestRepo(t, store.DefaultConfig())

	u := models.User{Username: "admin", DisplayName: "Admin", Role: "admin", PasswordHash: "hash"}
	require.NoError(t, repo.AddUser(u))
	assert.ErrorIs(t, repo.AddUser(u), ErrUserExists)

	found, ok := repo.FindUser("admin")
	require.True(t, ok)
	assert.Equal(t, "hash", found.PasswordHash)

	_, ok = repo.FindUser("ghost")
	assert.False(t, ok)

	// Current user is stored without the password hash.
	require.NoError(t, repo.SaveCurrentUser(u))
	assert.NotContains(t, mem.Data["attar_current_user_v1"], "passwordHash")

	current, ok := repo.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "admin", current.Username)

	require.NoError(t, repo.ClearCurrentUser())
	_, ok = repo.CurrentUser()
	assert.False(t, ok)
}

func TestSaveInventoryAtomicOnWriteFailure(t *testing.T) {
	repo, mem := newTestRepo(t, store.DefaultConfig())
	require.NoError(t, repo.SaveInventory([]models.InventoryItem{item("a", "Oud", 500, 10)}))

	before := mem.Data["attar_inventory_v1"]
	mem.FailKeys = map[string]bool{"attar_inventory_v1": true}

	err := repo.SaveInventory([]models.InventoryItem{item("b", "Rose", 300, 4)})
	require.Error(t, err)
	assert.Equal(t, before, mem.Data["attar_inventory_v1"], "failed write must not partially persist")
	assert.False(t, strings.Contains(mem.Data["attar_inventory_v1"], "Rose"))
}
