package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"optionsimulator/internal/config"
	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/handlers"
	"optionsimulator/internal/handlers/websocket"
	"optionsimulator/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.Environment)

	defaults, err := cfg.StartOptions()
	if err != nil {
		log.Fatalf("Invalid simulation configuration: %v", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logger.GinLogger(), gin.Recovery())

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	wsHandler := websocket.NewWebSocketHandler()
	wsHandler.SetHandlers(websocket.NewSimulationEventHandler(defaults), websocket.NewPricingEventHandler())

	healthHandler := handlers.NewHealthHandler(wsHandler.GetHub())
	pricingHandler := handlers.NewPricingHandler()

	// Shared engine driven over REST; frames are broadcast to every socket
	simulationEngine := simulation.NewSimulationEngine(wsHandler.GetHub())
	defer simulationEngine.Cleanup()
	simulationHandler := handlers.NewSimulationHandler(simulationEngine, defaults)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	// WebSocket endpoint
	r.GET("/ws", wsHandler.HandleWebSocket)

	// API routes group
	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Health)

		handlers.RegisterPricingRoutes(api, pricingHandler)
		handlers.RegisterSimulationRoutes(api, simulationHandler)
	}

	// Start server
	log.Infof("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
