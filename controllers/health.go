package controllers

import (
	"net/http"
	"os"

	"gorm.io/gorm"

	"raffle/utils"
)

type HealthController struct {
	DB              *gorm.DB
	PaymentsEnabled bool
}

func NewHealthController(db *gorm.DB, paymentsEnabled bool) *HealthController {
	return &HealthController{DB: db, PaymentsEnabled: paymentsEnabled}
}

// GET /
func (c *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Hourly raffle backend running"})
}

// GET /test is a diagnostic snapshot, not part of the raffle surface. Error text
// is truncated so no connection detail leaks.
func (c *HealthController) Test(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"backend":           "up",
		"database":          "not available",
		"connection_status": "not connected",
		"tables":            []string{},
		"payments":          c.PaymentsEnabled,
	}

	if c.DB != nil {
		resp["database"] = "available"
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.PingContext(r.Context()); err != nil {
				resp["database"] = "error: " + truncate(err.Error(), 50)
			} else {
				resp["connection_status"] = "connected"
				if tables, err := c.DB.Migrator().GetTables(); err == nil {
					if len(tables) > 10 {
						tables = tables[:10]
					}
					resp["tables"] = tables
					resp["database"] = "connected"
				}
			}
		}
	}

	resp["database_url"] = envSet("DB_HOST") || envSet("DB_DSN")
	resp["database_name"] = envSet("DB_NAME")
	utils.WriteJSON(w, http.StatusOK, resp)
}

func envSet(key string) bool {
	return os.Getenv(key) != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
