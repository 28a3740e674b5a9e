package handlers

import (
	"log"
	"net/http"

	"vehicle-tco/internal/api/models"
	"vehicle-tco/internal/data"

	"github.com/gin-gonic/gin"
)

// VehicleHandler handles vehicle preset requests
type VehicleHandler struct {
	vehicleDir string
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler() *VehicleHandler {
	dir := data.VehicleDir()
	log.Printf("VehicleHandler: Using vehicle directory: %s", dir)
	return &VehicleHandler{vehicleDir: dir}
}

// ListVehicles handles GET /api/v1/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	vehicles := []models.VehicleInfo{}

	presets, err := data.ListPresets(h.vehicleDir)
	if err != nil {
		// A missing directory is an empty list, not a failure.
		log.Printf("VehicleHandler: Failed to read vehicle directory %s: %v", h.vehicleDir, err)
		c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
		return
	}

	for _, p := range presets {
		vehicles = append(vehicles, models.VehicleInfo{
			ID:   p.ID,
			Name: p.Name,
			File: p.File,
			Specs: models.VehicleSpecs{
				Class:         p.Class,
				Drivetrain:    p.Drivetrain,
				PurchasePrice: p.PurchasePrice,
				PayloadTonnes: p.PayloadTonnes,
				LifespanYears: p.LifespanYears,
			},
		})
	}
	log.Printf("VehicleHandler: Returning %d vehicles", len(vehicles))

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}
