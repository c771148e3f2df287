package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/ManuelReschke/SupplierComply/internal/api/v1"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
)

type ApiRouter struct {
	generator *gs1.Generator
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, apiv1.NewAPIServer(h.generator))
}

func NewApiRouter(generator *gs1.Generator) *ApiRouter {
	return &ApiRouter{generator: generator}
}
