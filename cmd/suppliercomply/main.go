package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/SupplierComply/app/controllers"
	"github.com/ManuelReschke/SupplierComply/app/repository"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/barcode"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/billing"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/cache"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/database"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/env"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/gs1"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/notify"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/passwordreset"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/quota"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/router"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/storage"
)

func main() {
	app, shutdown := NewApplication()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	shutdown()
	if err != nil {
		log.Fatal(err)
	}
}

// utcNow keeps every stored timestamp and calendar month in UTC.
func utcNow() time.Time {
	return time.Now().UTC()
}

// NewApplication wires the services and returns the app plus a cleanup func
// for the background workers.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	store, err := storage.NewFromEnv(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize barcode storage: %v", err)
	}
	storage.StartHealthMonitor(store, time.Duration(env.GetEnvInt("STORAGE_HEALTH_INTERVAL_SECONDS", 60))*time.Second)

	jobs := jobqueue.GetManager()
	jobs.Start()
	notifier := notify.NewQueueNotifier(jobs.GetQueue(), env.GetEnv("ADMIN_NOTIFY_EMAIL", ""))

	billingService := billing.NewServiceFromDB(db,
		billing.WithClock(utcNow),
		billing.WithNotifier(notifier),
	)

	generator := gs1.NewGenerator(env.GetEnvInt("GTIN_INDICATOR", gs1.StandardIndicator), nil)

	// One lock per subscriber makes the monthly ceiling exact. The Redis lock
	// extends this across instances.
	var locker quota.Locker = quota.NewKeyedMutex()
	if env.GetEnvBool("QUOTA_HARD_CEILING", false) {
		locker = quota.NewRedisLocker(cache.GetClient(), 30*time.Second, 5*time.Second)
	}

	enforcer := quota.NewEnforcer(repos.Product, repos.Subscriber, quota.WithClock(utcNow))
	barcodeService := barcode.NewService(repos.Subscriber, enforcer, repos.Product, barcode.NewCode128Renderer(), store,
		barcode.WithClock(utcNow),
		barcode.WithLocker(locker),
		barcode.WithGenerator(generator),
	)

	services := &controllers.Services{
		Billing:   billingService,
		Barcodes:  barcodeService,
		Repos:     repos,
		Resets:    passwordreset.NewStore(cache.GetClient()),
		Mailer:    notifier,
		MailQueue: jobs.GetQueue(),
		BaseURL:   env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"),
	}
	if verifier := hcaptcha.NewFromEnv(); verifier != nil {
		services.Captcha = verifier
	}
	controllers.Setup(services)

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "SupplierComply",
		BodyLimit: 1 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:4000"),
		AllowCredentials: true,
	}))

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	}), monitor.New())

	// barcode images on local storage
	publicBase := env.GetEnv("BARCODE_PUBLIC_BASE_URL", "/uploads/barcodes")
	if local, ok := store.(*storage.LocalStore); ok && strings.HasPrefix(publicBase, "/") {
		app.Static(publicBase, local.Root(), fiber.Static{
			CacheDuration: 10 * time.Second,
			Compress:      false,
			MaxAge:        604800, // 7 days
		})
	}

	// SWAGGER / OPENAPI
	if _, err := os.Stat("public/docs/v1/openapi.yml"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, generator)

	shutdown := func() {
		jobs.Stop()
		storage.StopHealthMonitor()
	}
	return app, shutdown
}
