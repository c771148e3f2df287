package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/cache"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/database"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/storage"
)

const healthTimeout = 2 * time.Second

// HandleHealth reports database and cache reachability plus the last cached
// storage check. It answers 503 when the database or cache is down.
func HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	checks := fiber.Map{}
	healthy := true

	if err := pingDatabase(ctx); err != nil {
		checks["database"] = fiber.Map{"healthy": false, "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = fiber.Map{"healthy": true}
	}

	if err := cache.Ping(ctx); err != nil {
		checks["cache"] = fiber.Map{"healthy": false, "error": err.Error()}
		healthy = false
	} else {
		checks["cache"] = fiber.Map{"healthy": true}
	}

	if h, ok := storage.CachedHealth(); ok {
		checks["storage"] = h
	}

	status := fiber.StatusOK
	state := "ok"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func pingDatabase(ctx context.Context) error {
	db := database.GetDB()
	if db == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
