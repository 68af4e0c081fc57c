package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"attar-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemBackend) {
	t.Helper()
	mem := NewMem()
	st := New(mem, DefaultConfig())
	require.True(t, st.Available())
	return st, mem
}

func TestSetNamespacesKeys(t *testing.T) {
	st, mem := newTestStore(t)

	require.NoError(t, st.Set("inventory_v1", []string{"a"}))

	_, ok := mem.Data["attar_inventory_v1"]
	assert.True(t, ok, "value should be stored under the application prefix")
	_, ok = mem.Data["inventory_v1"]
	assert.False(t, ok)
}

func TestGetMissingLeavesDefault(t *testing.T) {
	st, _ := newTestStore(t)

	items := []string{"default"}
	ok := st.Get("nothing_here", &items)
	assert.False(t, ok)
	assert.Equal(t, []string{"default"}, items)
}

func TestGetCorruptValueIsIsolated(t *testing.T) {
	st, mem := newTestStore(t)

	require.NoError(t, st.Set("settings_v1", map[string]string{"theme": "light"}))
	mem.Data["attar_inventory_v1"] = "{not json"

	var items []models.InventoryItem
	assert.False(t, st.Get("inventory_v1", &items))
	assert.Nil(t, items)

	// The corrupt key must not block other collections.
	var settings map[string]string
	assert.True(t, st.Get("settings_v1", &settings))
	assert.Equal(t, "light", settings["theme"])
}

func TestUnavailableStoreNoOps(t *testing.T) {
	mem := NewMem()
	mem.Down = true
	st := New(mem, DefaultConfig())

	assert.False(t, st.Available())
	assert.ErrorIs(t, st.Set("k", 1), ErrUnavailable)
	assert.ErrorIs(t, st.Remove("k"), ErrUnavailable)

	v := 42
	assert.False(t, st.Get("k", &v))
	assert.Equal(t, 42, v)
	assert.Nil(t, st.KeysWithPrefix(""))

	_, err := st.Info()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKeysWithPrefix(t *testing.T) {
	st, mem := newTestStore(t)

	require.NoError(t, st.Set("backup_2", 1))
	require.NoError(t, st.Set("backup_1", 1))
	require.NoError(t, st.Set("settings_v1", 1))
	mem.Data["unrelated_key"] = "x"

	assert.Equal(t, []string{"backup_1", "backup_2"}, st.KeysWithPrefix("backup_"))
}

func TestClearAllSparesForeignKeys(t *testing.T) {
	st, mem := newTestStore(t)

	require.NoError(t, st.Set("inventory_v1", 1))
	mem.Data["someone_elses_data"] = "x"

	require.NoError(t, st.ClearAll())
	assert.Empty(t, st.KeysWithPrefix(""))
	assert.Equal(t, "x", mem.Data["someone_elses_data"])
}

func TestInfoReportsUsage(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.Set("settings_v1", map[string]string{"theme": "light"}))

	info, err := st.Info()
	require.NoError(t, err)
	assert.Equal(t, 1, info.ItemCount)
	assert.Equal(t, info.TotalBytes, info.Items["settings_v1"])
	assert.Greater(t, info.UsagePercent, 0.0)
	assert.Equal(t, DefaultMaxBytes, info.EstimatedLimit)
}

func seedBackup(t *testing.T, st *Store, ts int64, padding int) {
	t.Helper()
	b := models.Backup{
		Name:      strings.Repeat("x", padding),
		Timestamp: ts,
		Version:   Version,
	}
	require.NoError(t, st.Set(BackupPrefix+strconv.FormatInt(ts, 10), b))
}

func seedSale(ts string, padding int) models.SaleRecord {
	return models.SaleRecord{
		ID:           ts,
		Date:         ts[:10],
		Timestamp:    ts,
		CustomerName: strings.Repeat("c", padding),
		Items:        []models.BillLine{},
		Totals:       models.Totals{GrandTotal: decimal.New(100, 0)},
	}
}

// Quota recovery must evict old backups, truncate the sales history to the
// cap, retry the write once, and only then report failure.
func TestQuotaRecovery(t *testing.T) {
	mem := NewMem()
	seedCfg := Config{MaxBytes: 1 << 20, MaxBackups: 2, MaxSalesRecords: 2}
	seeder := New(mem, seedCfg)

	seedBackup(t, seeder, 1, 500)
	seedBackup(t, seeder, 2, 500)
	seedBackup(t, seeder, 3, 500)

	sales := []models.SaleRecord{
		seedSale("2024-01-01T10:00:00Z", 300),
		seedSale("2024-01-02T10:00:00Z", 300),
		seedSale("2024-01-03T10:00:00Z", 300),
		seedSale("2024-01-04T10:00:00Z", 300),
	}
	require.NoError(t, seeder.Set(KeySales, sales))

	info, err := seeder.Info()
	require.NoError(t, err)

	settings := map[string]string{"shopName": "SOOFI ATTARS"}
	raw, err := json.Marshal(settings)
	require.NoError(t, err)

	// A budget one byte short of what the write needs forces recovery.
	tight := Config{
		MaxBytes:        info.TotalBytes + len(raw) - 1,
		MaxBackups:      2,
		MaxSalesRecords: 2,
	}
	st := New(mem, tight)

	require.NoError(t, st.Set(KeySettings, settings))

	// Oldest backup evicted, two newest kept.
	assert.Equal(t, []string{"backup_2", "backup_3"}, st.KeysWithPrefix(BackupPrefix))

	// Sales truncated to the two most recent by timestamp.
	var kept []models.SaleRecord
	require.True(t, st.Get(KeySales, &kept))
	require.Len(t, kept, 2)
	assert.Equal(t, "2024-01-04T10:00:00Z", kept[0].Timestamp)
	assert.Equal(t, "2024-01-03T10:00:00Z", kept[1].Timestamp)

	// And the write that started it all landed.
	var got map[string]string
	require.True(t, st.Get(KeySettings, &got))
	assert.Equal(t, "SOOFI ATTARS", got["shopName"])
}

func TestQuotaExceededSurfacesWhenRecoveryInsufficient(t *testing.T) {
	mem := NewMem()
	st := New(mem, Config{MaxBytes: 10, MaxBackups: 2, MaxSalesRecords: 2})

	err := st.Set("settings_v1", strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCleanupBackupsKeepsNewest(t *testing.T) {
	mem := NewMem()
	st := New(mem, Config{MaxBackups: 2})

	seedBackup(t, st, 10, 0)
	seedBackup(t, st, 30, 0)
	seedBackup(t, st, 20, 0)

	st.CleanupBackups()

	assert.Equal(t, []string{"backup_20", "backup_30"}, st.KeysWithPrefix(BackupPrefix))
}

func TestBackendWriteFailureIsNotRetried(t *testing.T) {
	mem := NewMem()
	st := New(mem, DefaultConfig())
	mem.FailKeys = map[string]bool{"attar_sales_v1": true}

	err := st.Set(KeySales, []models.SaleRecord{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}
