package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/config"
	orderControllers "github.com/haileamlak-bekele/merchdelivery-api/controllers/order"
	"github.com/haileamlak-bekele/merchdelivery-api/logger"
	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
	"github.com/haileamlak-bekele/merchdelivery-api/routes"
	"github.com/haileamlak-bekele/merchdelivery-api/services"
)

func main() {
	log.Println("✅ Starting application...")

	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	db := initDatabase(cfg)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Merchant{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentAccount{},
		&models.PaymentTransaction{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	store := repository.NewGormStore(db)
	hub := orderControllers.NewEventHub()
	checkout := services.NewCheckoutService(store, hub, logger.Log)
	flow := services.NewOrderFlowService(store, hub, logger.Log)
	ledger := services.NewLedgerService(store, logger.Log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Idempotency-Hit"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logger.RequestLogger())

	routes.SetupRoutes(r, routes.Deps{
		Store:    store,
		Checkout: checkout,
		Flow:     flow,
		Ledger:   ledger,
		Hub:      hub,
		Redis:    rdb,
	})

	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	return db
}
