package handlers

import (
	"log"
	"net/http"

	"vehicle-tco/internal/api/models"
	"vehicle-tco/internal/data"
	"vehicle-tco/internal/sensitivity"

	"github.com/gin-gonic/gin"
)

// SensitivityHandler handles sweep and tornado requests
type SensitivityHandler struct {
	engine     *sensitivity.Engine
	vehicleDir string
}

// NewSensitivityHandler creates a new sensitivity handler
func NewSensitivityHandler() *SensitivityHandler {
	return &SensitivityHandler{
		engine:     sensitivity.NewEngine(sensitivity.Options{}),
		vehicleDir: data.VehicleDir(),
	}
}

// Sweep handles POST /api/v1/sensitivity
func (h *SensitivityHandler) Sweep(c *gin.Context) {
	var req models.SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	param, err := sensitivity.ParseParameter(req.Parameter)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	in, err := buildInputs(&req.Config, h.vehicleDir)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	values := req.Values
	if len(values) == 0 && req.Points > 0 {
		values, err = sensitivity.RangeFor(param, in.Scenario, req.Points)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
			return
		}
	}

	res, err := h.engine.Sweep(in.A, in.B, in.Scenario, param, values)
	if err != nil {
		log.Printf("SensitivityHandler: sweep %s failed: %v", param, err)
		respondCalcError(c, err)
		return
	}

	resp := models.SensitivityResponse{
		Parameter: string(param),
		Label:     param.Label(),
		Unit:      param.Unit(),
		BaseValue: res.BaseValue,
		Points:    make([]models.SensitivityPoint, len(res.Points)),
	}
	for i, p := range res.Points {
		cmp := p.Comparison
		resp.Points[i] = models.SensitivityPoint{
			Value:               p.Value,
			IsBase:              p.Value == res.BaseValue,
			TCOA:                cmp.A.TotalTCO,
			TCOB:                cmp.B.TotalTCO,
			TCODifference:       cmp.TCODifference,
			SocialTCODifference: cmp.SocialTCODifference,
			LCODA:               cmp.A.LCOD,
			LCODB:               cmp.B.LCOD,
			ParityYear:          cmp.ParityYear,
		}
		resp.Warnings = append(resp.Warnings, warningInfos(cmp.Warnings)...)
	}
	c.JSON(http.StatusOK, resp)
}

// Tornado handles POST /api/v1/sensitivity/tornado
func (h *SensitivityHandler) Tornado(c *gin.Context) {
	var req models.TornadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	metric, err := sensitivity.ParseMetric(req.Metric)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	var params []sensitivity.Parameter
	for _, name := range req.Parameters {
		p, err := sensitivity.ParseParameter(name)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
			return
		}
		params = append(params, p)
	}

	in, err := buildInputs(&req.Config, h.vehicleDir)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	bars, err := h.engine.Tornado(in.A, in.B, in.Scenario, params, metric)
	if err != nil {
		log.Printf("SensitivityHandler: tornado failed: %v", err)
		respondCalcError(c, err)
		return
	}

	resp := models.TornadoResponse{Metric: string(metric), Bars: make([]models.TornadoBar, len(bars))}
	for i, b := range bars {
		resp.Bars[i] = models.TornadoBar{
			Parameter:   string(b.Parameter),
			Label:       b.Label,
			BaseValue:   b.BaseValue,
			LowValue:    b.LowValue,
			HighValue:   b.HighValue,
			BaseOutcome: b.BaseOutcome,
			LowImpact:   b.LowImpact(),
			HighImpact:  b.HighImpact(),
			Swing:       b.Swing,
		}
	}
	c.JSON(http.StatusOK, resp)
}
