package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/kitchen-queue/config"
	"github.com/yeremiapane/kitchen-queue/hub"
	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/notifier"
	"github.com/yeremiapane/kitchen-queue/router"
	"github.com/yeremiapane/kitchen-queue/services"
	"github.com/yeremiapane/kitchen-queue/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Info("No .env file found, using environment variables")
	}
	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.RestaurantSettings{},
		&models.Chef{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.ChefActivityLog{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	notificationHub := hub.New()
	publisher := hub.NewPublisher(notificationHub)

	// Emails go through RabbitMQ when available, straight to SMTP otherwise.
	var queue *notifier.Queue
	if url := os.Getenv("AMQP_URL"); url != "" {
		queue, err = notifier.DialQueue(url, "kitchen_queue_emails")
		if err != nil {
			utils.ErrorLogger.Errorf("RabbitMQ unavailable, falling back to direct SMTP: %v", err)
			queue = nil
		}
	}
	mailer := notifier.NewMailer(queue, notifier.SMTPConfigFromEnv())
	if queue != nil {
		defer queue.Close()
		if err := queue.Consume(mailer.Deliver); err != nil {
			utils.ErrorLogger.Errorf("Failed to start email consumer: %v", err)
		}
	}

	engine := lifecycle.NewEngine(db, publisher, mailer)

	delayMonitor := services.NewDelayMonitor(db, publisher)
	delayMonitor.Start()
	defer delayMonitor.Stop()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(db, engine, notificationHub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Infof("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start server: %v", err)
	}
}
