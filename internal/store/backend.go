package store

import (
	"errors"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Backend is the raw key/value primitive the Store sits on. Values are
// opaque strings; all JSON handling happens above this line.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Put(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

type kvEntry struct {
	K string `gorm:"primaryKey;size:191"`
	V string `gorm:"type:text"`
}

func (kvEntry) TableName() string { return "kv_entries" }

// GormBackend keeps the key/value table in MySQL or a local SQLite file.
type GormBackend struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL with a short retry loop so the server can
// come up before the database container does.
func OpenMySQL(dsn string) (*GormBackend, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

// OpenSQLite opens (or creates) a local database file. This is the default
// for a single-till installation with no database server around.
func OpenSQLite(path string) (*GormBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Get(key string) (string, bool, error) {
	var e kvEntry
	err := b.db.First(&e, "k = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.V, true, nil
}

func (b *GormBackend) Put(key, value string) error {
	return b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&kvEntry{K: key, V: value}).Error
}

func (b *GormBackend) Delete(key string) error {
	return b.db.Delete(&kvEntry{}, "k = ?", key).Error
}

func (b *GormBackend) Keys() ([]string, error) {
	var keys []string
	err := b.db.Model(&kvEntry{}).Pluck("k", &keys).Error
	return keys, err
}

// MemBackend is a map-backed Backend for tests. FailKeys makes writes to
// specific full keys fail, Down makes every operation fail.
type MemBackend struct {
	Data     map[string]string
	FailKeys map[string]bool
	Down     bool
}

func NewMem() *MemBackend {
	return &MemBackend{Data: map[string]string{}}
}

var errBackendDown = errors.New("backend down")

func (b *MemBackend) Get(key string) (string, bool, error) {
	if b.Down {
		return "", false, errBackendDown
	}
	v, ok := b.Data[key]
	return v, ok, nil
}

func (b *MemBackend) Put(key, value string) error {
	if b.Down {
		return errBackendDown
	}
	if b.FailKeys[key] {
		return errors.New("write failed: " + key)
	}
	b.Data[key] = value
	return nil
}

func (b *MemBackend) Delete(key string) error {
	if b.Down {
		return errBackendDown
	}
	delete(b.Data, key)
	return nil
}

func (b *MemBackend) Keys() ([]string, error) {
	if b.Down {
		return nil, errBackendDown
	}
	keys := make([]string, 0, len(b.Data))
	for k := range b.Data {
		keys = append(keys, k)
	}
	return keys, nil
}
