package main

import (
	"fmt"
	"log"
	"os"

	"vehicle-tco/internal/api/handlers"
	"vehicle-tco/internal/api/middleware"
	"vehicle-tco/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	vehicleDir := data.VehicleDir()
	if info, err := os.Stat(vehicleDir); err == nil && info.IsDir() {
		log.Printf("Vehicle directory found: %s", vehicleDir)
	} else {
		log.Printf("Vehicle directory not found at: %s (error: %v)", vehicleDir, err)
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	tcoHandler := handlers.NewTCOHandler(data.GetCache())
	sensitivityHandler := handlers.NewSensitivityHandler()
	vehicleHandler := handlers.NewVehicleHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/tco", tcoHandler.Calculate)
		api.GET("/tco/:id/table", tcoHandler.GetTable)

		api.POST("/sensitivity", sensitivityHandler.Sweep)
		api.POST("/sensitivity/tornado", sensitivityHandler.Tornado)

		api.GET("/vehicles", vehicleHandler.ListVehicles)
		api.GET("/parameters", handlers.ListParameters)
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
