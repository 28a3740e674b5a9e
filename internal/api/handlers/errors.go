package handlers

import (
	"errors"
	"net/http"

	"vehicle-tco/internal/api/models"
	"vehicle-tco/internal/config"
	"vehicle-tco/internal/cost"
	"vehicle-tco/internal/data"
	"vehicle-tco/internal/model"
	"vehicle-tco/internal/price"
	"vehicle-tco/internal/scenario"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// respondCalcError maps an engine error to a status and code.
func respondCalcError(c *gin.Context, err error) {
	var (
		missing *cost.MissingDataError
		lookup  *price.MissingError
		cfgErr  *scenario.ConfigError
		valErr  *model.ValidationError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &lookup):
		respondError(c, http.StatusUnprocessableEntity, "MISSING_DATA", err)
	case errors.As(err, &cfgErr), errors.As(err, &valErr), errors.Is(err, scenario.ErrUnknownPriceScenario):
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
	default:
		respondError(c, http.StatusInternalServerError, "CALCULATION_ERROR", err)
	}
}

// buildInputs resolves vehicle_file presets inside vehicleDir and builds
// engine inputs. Only preset base names are honoured.
func buildInputs(cfg *config.Config, vehicleDir string) (*config.Inputs, error) {
	var pathErr error
	err := cfg.ResolveVehicleFiles(func(name string) string {
		p, err := data.PresetPath(vehicleDir, name)
		if err != nil {
			pathErr = err
		}
		return p
	})
	if pathErr != nil {
		return nil, pathErr
	}
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}
