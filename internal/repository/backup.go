package repository

import (
	"sort"
	"strconv"
	"time"

	"attar-pos/internal/models"
	"attar-pos/internal/store"
)

func backupKey(timestamp int64) string {
	return store.BackupPrefix + strconv.FormatInt(timestamp, 10)
}

// BackupSummary is the listing row for a stored backup, without its data.
type BackupSummary struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`
	Version   string `json:"version"`
}

// CreateBackup snapshots every collection into one immutable record keyed
// by creation time, then evicts the oldest backups beyond the retention
// cap.
func (r *Repository) CreateBackup(name string) (models.Backup, error) {
	now := time.Now()
	if name == "" {
		name = "backup_" + now.Format("2006-01-02")
	}
	backup := models.Backup{
		Name:      name,
		Timestamp: now.UnixMilli(),
		Version:   store.Version,
		Data: models.BackupData{
			Inventory:        r.Inventory(),
			Sales:            r.Sales(),
			Settings:         r.Settings(),
			InvoiceSequences: r.seq.AllSequences(),
		},
	}
	if err := r.st.Set(backupKey(backup.Timestamp), backup); err != nil {
		return models.Backup{}, err
	}
	r.st.CleanupBackups()
	return backup, nil
}

// ListBackups returns summaries of all stored backups, newest first.
// Unreadable backup entries are skipped.
func (r *Repository) ListBackups() []BackupSummary {
	var summaries []BackupSummary
	for _, key := range r.st.KeysWithPrefix(store.BackupPrefix) {
		var b models.Backup
		if !r.st.Get(key, &b) {
			continue
		}
		summaries = append(summaries, BackupSummary{
			Key:       key,
			Name:      b.Name,
			Timestamp: b.Timestamp,
			Date:      time.UnixMilli(b.Timestamp).Format("2006-01-02 15:04:05"),
			Version:   b.Version,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Timestamp > summaries[j].Timestamp })
	return summaries
}

// RestoreBackup overwrites inventory, sales and settings wholesale and
// replays the invoice counters. It does NOT back up the current state
// first; callers wanting a safety net create one explicitly.
func (r *Repository) RestoreBackup(timestamp int64) error {
	var backup models.Backup
	if !r.st.Get(backupKey(timestamp), &backup) {
		return ErrNotFound
	}
	if err := r.SaveInventory(backup.Data.Inventory); err != nil {
		return err
	}
	if err := r.SaveSales(backup.Data.Sales); err != nil {
		return err
	}
	if err := r.SaveSettings(backup.Data.Settings); err != nil {
		return err
	}
	for year, seq := range backup.Data.InvoiceSequences {
		if err := r.seq.SetSequence(year, seq); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) DeleteBackup(timestamp int64) error {
	return r.st.Remove(backupKey(timestamp))
}
