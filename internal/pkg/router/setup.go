package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, generator *gs1.Generator) {
	// HttpRouter first: it initializes the session store and the global
	// UserContext middleware the other routes depend on.
	setup(app, NewHttpRouter(), NewApiRouter(generator))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
