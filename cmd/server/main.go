package main

import (
	"log"
	"os"
	"time"

	"attar-pos/internal/billing"
	"attar-pos/internal/handlers"
	"attar-pos/internal/invoice"
	"attar-pos/internal/middleware"
	"attar-pos/internal/models"
	"attar-pos/internal/repository"
	"attar-pos/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	st := openStore()
	seq := invoice.New(st)
	repo := repository.New(st, seq)
	engine := billing.NewEngine(repo, seq)
	h := handlers.New(st, repo, seq, engine)

	seedUsers(repo)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", h.Register)
		log.Println("WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("Registration route is disabled.")
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// STAFF & ADMIN
		api.POST("/logout", h.Logout)
		api.GET("/inventory", h.GetInventory)
		api.GET("/bill", h.GetBill)
		api.POST("/bill/lines", h.AddBillLine)
		api.DELETE("/bill/lines/:itemId", h.RemoveBillLine)
		api.DELETE("/bill", h.ClearBill)
		api.GET("/bill/totals", h.GetTotals)
		api.POST("/checkout", h.Checkout)
		api.GET("/sales", h.GetSales)
		api.GET("/sales/stats", h.GetSalesStats)
		api.GET("/sales/export", h.ExportSalesXLSX)
		api.GET("/settings", h.GetSettings)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", h.AskAI)

			admin.POST("/inventory", h.AddInventoryItem)
			admin.PUT("/inventory/:id", h.UpdateInventoryItem)
			admin.DELETE("/inventory/:id", h.DeleteInventoryItem)
			admin.POST("/inventory/:id/adjust", h.AdjustStock)

			admin.PUT("/settings", h.UpdateSettings)

			admin.GET("/backups", h.ListBackups)
			admin.POST("/backups", h.CreateBackup)
			admin.POST("/backups/:timestamp/restore", h.RestoreBackup)
			admin.DELETE("/backups/:timestamp", h.DeleteBackup)

			admin.GET("/export", h.ExportJSON)
			admin.POST("/import", h.ImportJSON)

			admin.GET("/storage", h.GetStorageInfo)
			admin.GET("/storage/validate", h.ValidateData)
			admin.POST("/storage/repair", h.RepairData)
		}
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

// openStore picks MySQL when DB_DSN is configured, otherwise a local
// SQLite file next to the binary - the usual single-till setup.
func openStore() *store.Store {
	var backend store.Backend
	var err error

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		backend, err = store.OpenMySQL(dsn)
		if err != nil {
			log.Fatal("Failed to connect to MySQL:", err)
		}
		log.Println("Connected to MySQL")
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "attar-pos.db"
		}
		backend, err = store.OpenSQLite(path)
		if err != nil {
			log.Fatal("Failed to open local database:", err)
		}
		log.Println("Using local database file " + path)
	}

	st := store.New(backend, store.DefaultConfig())
	if !st.Available() {
		log.Println("WARNING: storage probe failed; running with persistence disabled")
	}
	return st
}

// seedUsers creates the default admin and cashier accounts on first run so
// the shop can log in to an empty installation.
func seedUsers(repo *repository.Repository) {
	if len(repo.Users()) > 0 {
		return
	}

	defaults := []struct {
		username, password, displayName, role string
	}{
		{"admin", "admin123", "Admin", "admin"},
		{"cashier", "cashier123", "Cashier", "cashier"},
	}

	users := make([]models.User, 0, len(defaults))
	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash default password:", err)
		}
		users = append(users, models.User{
			Username:     d.username,
			DisplayName:  d.displayName,
			Role:         d.role,
			PasswordHash: string(hash),
		})
	}
	if err := repo.SaveUsers(users); err != nil {
		log.Println("Warning: could not seed default users:", err)
		return
	}
	log.Println("Seeded default users (admin/cashier). Change the passwords!")
}
