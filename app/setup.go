package app

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/langroom/api/api"
	"github.com/langroom/api/config"
	"github.com/langroom/api/database"
	"github.com/langroom/api/router"
	"github.com/langroom/api/services/cron"
	"github.com/langroom/api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running or not")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to initialize database tables")
		return err
	}

	// Seed baseline data (idempotent)
	if os.Getenv("SEED_DATABASE") != "false" {
		db, ok := store.GetDB().(*gorm.DB)
		if ok {
			if err := database.NewSeeder(db).SeedAll(); err != nil {
				log.Printf("Warning: seeding failed: %v", err)
			}
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			log.Println("Warning: Failed to get database connection for cron jobs")
		} else {
			redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
			if err != nil {
				log.Printf("Warning: Redis unavailable for cron jobs: %v", err)
			}

			cronManager = cron.NewCronManager(db, store, redisCache)
			if err := cronManager.Start(); err != nil {
				// Don't fail the app, just log the warning
				log.Printf("Warning: Failed to start cron jobs: %v", err)
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}
