package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/auth"
	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/config"
	"github.com/darccuir/storefront-api/mailer"
	"github.com/darccuir/storefront-api/models"
	"github.com/darccuir/storefront-api/routes"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Production {
		log.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	db := initDatabase(cfg, log)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Variant{},
		&models.Subrubro{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("automigrate failed: %v", err)
	}

	firebase, err := auth.NewFirebase(context.Background(), cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	if firebase == nil {
		log.Warn("firebase credentials not configured, Google sign-in disabled")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded product images
	r.Static("/uploads", cfg.UploadsDir)

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Carts:    cart.NewService(db, cart.Config{}, log),
		Mailer:   mailer.New(cfg.SendgridAPIKey, cfg.MailFrom, log),
		Firebase: firebase,
		Log:      log,
	})

	log.Infof("server running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection. The handle is created once
// here and shared by reference everywhere.
func initDatabase(cfg config.Config, log *logrus.Logger) *gorm.DB {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect DB: %v", err)
	}
	return db
}
