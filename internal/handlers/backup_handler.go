package handlers

import (
	"net/http"
	"strconv"

	"attar-pos/internal/repository"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBackups(c *gin.Context) {
	backups := h.Repo.ListBackups()
	if backups == nil {
		backups = []repository.BackupSummary{}
	}
	c.JSON(http.StatusOK, backups)
}

type CreateBackupRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateBackup(c *gin.Context) {
	var input CreateBackupRequest
	// Body is optional; an unnamed backup gets a dated default.
	_ = c.ShouldBindJSON(&input)

	backup, err := h.Repo.CreateBackup(input.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Backup created",
		"name":      backup.Name,
		"timestamp": backup.Timestamp,
	})
}

func backupTimestamp(c *gin.Context) (int64, bool) {
	ts, err := strconv.ParseInt(c.Param("timestamp"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid backup timestamp"})
		return 0, false
	}
	return ts, true
}

// RestoreBackup overwrites the live data with the snapshot. The current
// state is NOT saved first; clients wanting a safety net create a backup
// before calling this.
func (h *Handler) RestoreBackup(c *gin.Context) {
	ts, ok := backupTimestamp(c)
	if !ok {
		return
	}
	if err := h.Repo.RestoreBackup(ts); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup restored"})
}

func (h *Handler) DeleteBackup(c *gin.Context) {
	ts, ok := backupTimestamp(c)
	if !ok {
		return
	}
	if err := h.Repo.DeleteBackup(ts); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backup deleted"})
}
