package store

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"attar-pos/internal/models"
)

// Key layout and limits. Every key is namespaced under Prefix so the table
// can be shared with unrelated data without collisions.
const (
	Prefix  = "attar_"
	Version = "1.0.0"

	KeyInventory     = "inventory_v1"
	KeySales         = "sales_v1"
	KeyCurrentUser   = "current_user_v1"
	KeyUsers         = "users_v1"
	KeySettings      = "settings_v1"
	InvoiceSeqPrefix = "invoice_seq_"
	BackupPrefix     = "backup_"

	// DefaultMaxBytes mirrors the ~5MB budget of the browser storage the
	// shop ran on before; keeping it bounds the table on a small till PC.
	DefaultMaxBytes = 5 * 1024 * 1024
)

// Config bounds what the store will hold. Zero values select the defaults.
type Config struct {
	MaxBytes          int
	MaxBackups        int
	MaxSalesRecords   int
	MaxInventoryItems int
}

func DefaultConfig() Config {
	return Config{
		MaxBytes:          DefaultMaxBytes,
		MaxBackups:        5,
		MaxSalesRecords:   10000,
		MaxInventoryItems: 1000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxBytes <= 0 {
		c.MaxBytes = d.MaxBytes
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxSalesRecords <= 0 {
		c.MaxSalesRecords = d.MaxSalesRecords
	}
	if c.MaxInventoryItems <= 0 {
		c.MaxInventoryItems = d.MaxInventoryItems
	}
	return c
}

var (
	ErrUnavailable   = errors.New("storage unavailable")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is the persistence layer every collection goes through. Values are
// JSON; a corrupt value at one key never blocks reads of another.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	cfg       Config
	available bool
}

// New wraps a backend and probes it once.
func New(b Backend, cfg Config) *Store {
	s := &Store{backend: b, cfg: cfg.withDefaults()}
	s.available = s.probe()
	if !s.available {
		log.Println("store: storage is not available, all operations will no-op")
	}
	return s
}

func (s *Store) probe() bool {
	sentinel := Prefix + "__storage_test__"
	if err := s.backend.Put(sentinel, "ok"); err != nil {
		return false
	}
	return s.backend.Delete(sentinel) == nil
}

func (s *Store) Available() bool { return s.available }

// Limits reports the caps the store was configured with; the repository
// uses them to bound its collections.
func (s *Store) Limits() Config { return s.cfg }

func fullKey(key string) string { return Prefix + key }

// Get decodes the value at key into `into`. It returns false on a miss,
// on corruption, or when storage is unavailable, leaving `into` untouched
// so the caller keeps its default.
func (s *Store) Get(key string, into any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key, into)
}

func (s *Store) get(key string, into any) bool {
	if !s.available {
		return false
	}
	raw, ok, err := s.backend.Get(fullKey(key))
	if err != nil {
		log.Printf("store: error reading key %q: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		log.Printf("store: corrupt value at key %q: %v", key, err)
		return false
	}
	return true
}

// Set encodes value as JSON and writes it. A write that would blow the
// byte budget triggers cleanup (old backups first, then oversized sales
// history) and one retry; only then does the failure surface.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(key, value)
}

func (s *Store) set(key string, value any) error {
	if !s.available {
		return ErrUnavailable
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	err = s.write(key, string(raw))
	if errors.Is(err, ErrQuotaExceeded) {
		log.Println("store: quota exceeded, attempting cleanup")
		s.cleanupOldBackups()
		s.truncateSales()
		err = s.write(key, string(raw))
	}
	return err
}

// write enforces the byte budget before touching the backend.
func (s *Store) write(key, raw string) error {
	total, perKey, err := s.usage()
	if err != nil {
		return err
	}
	if total-perKey[key]+len(raw) > s.cfg.MaxBytes {
		return ErrQuotaExceeded
	}
	return s.backend.Put(fullKey(key), raw)
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return ErrUnavailable
	}
	return s.backend.Delete(fullKey(key))
}

// KeysWithPrefix returns logical keys (application prefix stripped) that
// start with p.
func (s *Store) KeysWithPrefix(p string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keysWithPrefix(p)
}

func (s *Store) keysWithPrefix(p string) []string {
	if !s.available {
		return nil
	}
	all, err := s.backend.Keys()
	if err != nil {
		log.Printf("store: error listing keys: %v", err)
		return nil
	}
	var keys []string
	for _, k := range all {
		if !strings.HasPrefix(k, Prefix) {
			continue
		}
		logical := strings.TrimPrefix(k, Prefix)
		if strings.HasPrefix(logical, p) {
			keys = append(keys, logical)
		}
	}
	sort.Strings(keys)
	return keys
}

// ClearAll removes every namespaced key. Keys outside the prefix are left
// alone.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return ErrUnavailable
	}
	all, err := s.backend.Keys()
	if err != nil {
		return err
	}
	for _, k := range all {
		if strings.HasPrefix(k, Prefix) {
			if err := s.backend.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// UsageInfo describes how much of the budget the shop's data occupies.
type UsageInfo struct {
	TotalBytes     int            `json:"totalBytes"`
	TotalKB        float64        `json:"totalKB"`
	TotalMB        float64        `json:"totalMB"`
	ItemCount      int            `json:"itemCount"`
	Items          map[string]int `json:"items"`
	EstimatedLimit int            `json:"estimatedLimit"`
	UsagePercent   float64        `json:"usagePercent"`
}

func (s *Store) Info() (UsageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return UsageInfo{}, ErrUnavailable
	}
	total, perKey, err := s.usage()
	if err != nil {
		return UsageInfo{}, err
	}
	return UsageInfo{
		TotalBytes:     total,
		TotalKB:        float64(total) / 1024,
		TotalMB:        float64(total) / (1024 * 1024),
		ItemCount:      len(perKey),
		Items:          perKey,
		EstimatedLimit: s.cfg.MaxBytes,
		UsagePercent:   float64(total) / float64(s.cfg.MaxBytes) * 100,
	}, nil
}

// usage sums the stored value sizes per logical key.
func (s *Store) usage() (int, map[string]int, error) {
	all, err := s.backend.Keys()
	if err != nil {
		return 0, nil, err
	}
	total := 0
	perKey := map[string]int{}
	for _, k := range all {
		if !strings.HasPrefix(k, Prefix) {
			continue
		}
		raw, ok, err := s.backend.Get(k)
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			continue
		}
		size := len(raw)
		perKey[strings.TrimPrefix(k, Prefix)] = size
		total += size
	}
	return total, perKey, nil
}

// CleanupBackups applies the backup retention cap. Called after each new
// backup and during quota recovery.
func (s *Store) CleanupBackups() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return
	}
	s.cleanupOldBackups()
}

// cleanupOldBackups drops the oldest backups beyond the retention cap.
func (s *Store) cleanupOldBackups() {
	keys := s.keysWithPrefix(BackupPrefix)
	type entry struct {
		key string
		ts  int64
	}
	var backups []entry
	for _, k := range keys {
		var b models.Backup
		if s.get(k, &b) {
			backups = append(backups, entry{key: k, ts: b.Timestamp})
		}
	}
	if len(backups) <= s.cfg.MaxBackups {
		return
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].ts < backups[j].ts })
	toRemove := backups[:len(backups)-s.cfg.MaxBackups]
	for _, b := range toRemove {
		if err := s.backend.Delete(fullKey(b.key)); err != nil {
			log.Printf("store: error removing backup %q: %v", b.key, err)
		}
	}
	log.Printf("store: cleaned up %d old backups", len(toRemove))
}

// truncateSales keeps only the most recent records when the sales history
// grows past its cap.
func (s *Store) truncateSales() {
	var sales []models.SaleRecord
	if !s.get(KeySales, &sales) {
		return
	}
	if len(sales) <= s.cfg.MaxSalesRecords {
		return
	}
	// RFC 3339 timestamps sort chronologically as strings.
	sort.Slice(sales, func(i, j int) bool { return sales[i].Timestamp > sales[j].Timestamp })
	kept := sales[:s.cfg.MaxSalesRecords]
	raw, err := json.Marshal(kept)
	if err != nil {
		return
	}
	if err := s.backend.Put(fullKey(KeySales), string(raw)); err != nil {
		log.Printf("store: error truncating sales: %v", err)
		return
	}
	log.Printf("store: compressed sales data from %d to %d records", len(sales), len(kept))
}
