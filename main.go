package main

import (
	"log"

	"github.com/ayele-dev/zemcart/config"
	"github.com/ayele-dev/zemcart/controllers"
	"github.com/ayele-dev/zemcart/kkiapay"
	"github.com/ayele-dev/zemcart/routes"
	"github.com/ayele-dev/zemcart/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Wire the payment gateway client
	controllers.InitPaymentGateway(kkiapay.NewClient(cfg.KkiapayBaseURL, cfg.KkiapayPrivateKey))

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
