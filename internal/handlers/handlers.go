// Package handlers is the gin-facing surface. Handlers parse and respond;
// every rule lives in the billing engine and the repository.
package handlers

import (
	"errors"
	"net/http"

	"attar-pos/internal/billing"
	"attar-pos/internal/invoice"
	"attar-pos/internal/models"
	"attar-pos/internal/repository"
	"attar-pos/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler carries the application context. No package globals; everything
// a request needs is wired in at startup.
type Handler struct {
	Store  *store.Store
	Repo   *repository.Repository
	Seq    *invoice.Sequencer
	Engine *billing.Engine
}

func New(st *store.Store, repo *repository.Repository, seq *invoice.Sequencer, engine *billing.Engine) *Handler {
	return &Handler{Store: st, Repo: repo, Seq: seq, Engine: engine}
}

// fail maps domain errors onto HTTP statuses in one place.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, billing.ErrInvalidQuantity),
		errors.Is(err, billing.ErrInsufficientStock),
		errors.Is(err, billing.ErrEmptyBill),
		errors.Is(err, billing.ErrItemRemoved),
		errors.Is(err, repository.ErrCapacityExceeded),
		errors.Is(err, repository.ErrInvalidFormat),
		errors.Is(err, repository.ErrNegativeStock),
		errors.Is(err, repository.ErrUserExists):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrQuotaExceeded):
		status = http.StatusInsufficientStorage
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestUser resolves the authenticated user set by the middleware.
func (h *Handler) requestUser(c *gin.Context) models.User {
	username := c.GetString("username")
	if u, ok := h.Repo.FindUser(username); ok {
		return u
	}
	return models.User{Username: username, Role: c.GetString("role")}
}

// percentQuery reads a percentage query parameter, treating absent or
// unparseable values as zero, the way the billing form does.
func percentQuery(c *gin.Context, name string) decimal.Decimal {
	raw := c.Query(name)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
