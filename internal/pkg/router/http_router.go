package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/SupplierComply/app/controllers"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/middleware"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session unless a store was injected
	if session.GetSessionStore() == nil {
		session.NewSessionStore()
	}

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get("/health", controllers.HandleHealth)

	h.registerAuthRoutes(app)
	h.registerSubscriberRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerAuthRoutes(app *fiber.App) {
	// credential endpoints get a tighter limit than the rest of the API
	credentials := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
	})

	auth := app.Group("/auth")
	auth.Post("/register", credentials, controllers.HandleRegister)
	auth.Post("/login", credentials, controllers.HandleLogin)
	auth.Post("/logout", controllers.HandleLogout)
	auth.Post("/forgot-password", credentials, controllers.HandleForgotPassword)
	auth.Post("/reset-password", credentials, controllers.HandleResetPassword)
	auth.Get("/profile", middleware.RequireAuth, controllers.HandleGetProfile)
	auth.Put("/profile", middleware.RequireAuth, controllers.HandleUpdateProfile)
}

func (h HttpRouter) registerSubscriberRoutes(app *fiber.App) {
	barcodes := app.Group("/barcode", middleware.RequireAuth)
	barcodes.Post("/generate", controllers.HandleGenerateBarcode)
	barcodes.Get("/history", controllers.HandleBarcodeHistory)
	barcodes.Get("/stats", controllers.HandleBarcodeStats)
	barcodes.Post("/validate", controllers.HandleValidateGTIN)

	payment := app.Group("/payment/api", middleware.RequireAuth)
	payment.Get("/status", controllers.HandlePaymentStatus)
	payment.Post("/i-have-paid", controllers.HandleClaimPayment)
	payment.Post("/cancel-pending", controllers.HandleCancelPending)

	dashboard := app.Group("/dashboard/api", middleware.RequireAuth)
	dashboard.Get("/stats", controllers.HandleDashboardStats)
	dashboard.Get("/products", controllers.HandleDashboardProducts)
	dashboard.Get("/expiring", controllers.HandleExpiringProducts)
	dashboard.Get("/activities", controllers.HandleDashboardActivities)
}

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/api", middleware.RequireAdmin)
	adminGroup.Get("/dashboard", controllers.HandleAdminDashboard)
	adminGroup.Get("/users", controllers.HandleAdminUsers)
	adminGroup.Post("/users/set-trial", controllers.HandleAdminSetTrial)
	adminGroup.Get("/activities", controllers.HandleAdminActivities)

	// Payment reconciliation
	adminGroup.Get("/payments/pending", controllers.HandleAdminPendingPayments)
	adminGroup.Get("/payments/history", controllers.HandleAdminPaymentHistory)
	adminGroup.Post("/payments/confirm", controllers.HandleAdminConfirmPayment)
	adminGroup.Get("/search-payment-code", controllers.HandleAdminSearchPaymentCode)
}
