package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /gtin/generate)
	GetGtinGenerate(c *fiber.Ctx, params GetGtinGenerateParams) error
	// (GET /gtin/validate/{gtin})
	GetGtinValidate(c *fiber.Ctx, gtin string) error
	// (POST /gs1/compose)
	PostGs1Compose(c *fiber.Ctx) error
}

// ServerInterfaceWrapper converts fiber contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type MiddlewareFunc fiber.Handler

func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

func (siw *ServerInterfaceWrapper) GetGtinGenerate(c *fiber.Ctx) error {
	var params GetGtinGenerateParams
	if err := c.QueryParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "invalid format for parameter indicator"})
	}
	return siw.Handler.GetGtinGenerate(c, params)
}

func (siw *ServerInterfaceWrapper) GetGtinValidate(c *fiber.Ctx) error {
	return siw.Handler.GetGtinValidate(c, c.Params("gtin"))
}

func (siw *ServerInterfaceWrapper) PostGs1Compose(c *fiber.Ctx) error {
	return siw.Handler.PostGs1Compose(c)
}

// FiberServerOptions provides options for the Fiber server.
type FiberServerOptions struct {
	BaseURL     string
	Middlewares []MiddlewareFunc
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, FiberServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options FiberServerOptions) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	for _, m := range options.Middlewares {
		router.Use(fiber.Handler(m))
	}

	router.Get(options.BaseURL+"/ping", wrapper.GetPing)
	router.Get(options.BaseURL+"/gtin/generate", wrapper.GetGtinGenerate)
	router.Get(options.BaseURL+"/gtin/validate/:gtin", wrapper.GetGtinValidate)
	router.Post(options.BaseURL+"/gs1/compose", wrapper.PostGs1Compose)
}
