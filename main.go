package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/config"
	"github.com/ekantin/canteen-app/database"
	"github.com/ekantin/canteen-app/middlewares"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/router"
	"github.com/ekantin/canteen-app/services"
	"github.com/ekantin/canteen-app/utils"
)

func main() {
	seed := flag.Bool("seed", false, "insert demo data and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	autoMigrate(db)

	if *seed {
		if err := database.Seed(db); err != nil {
			utils.ErrorLogger.Fatalf("Seeding failed: %v", err)
		}
		utils.InfoLogger.Println("Demo data seeded successfully")
		return
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Expire unpaid gateway top-ups in the background.
	topupMonitor := services.NewTopupMonitor(db)
	topupMonitor.Start()
	defer topupMonitor.Stop()

	// Drop expired entries from the logout blacklist.
	go func() {
		for range time.Tick(time.Hour) {
			utils.CleanupBlacklist()
		}
	}()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.ParentStudent{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.TopupPayment{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
