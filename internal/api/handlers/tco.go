package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"vehicle-tco/internal/api/models"
	"vehicle-tco/internal/data"
	"vehicle-tco/internal/tco"

	"github.com/gin-gonic/gin"
)

// TCOHandler handles comparison requests
type TCOHandler struct {
	calc       *tco.Calculator
	cache      *data.ResultCache
	vehicleDir string
}

// NewTCOHandler creates a new TCO handler. A nil cache uses the process-wide
// one.
func NewTCOHandler(cache *data.ResultCache) *TCOHandler {
	if cache == nil {
		cache = data.GetCache()
	}
	dir := data.VehicleDir()
	log.Printf("TCOHandler: Using vehicle directory: %s", dir)
	return &TCOHandler{
		calc:       tco.New(tco.Options{}),
		cache:      cache,
		vehicleDir: dir,
	}
}

// Calculate handles POST /api/v1/tco
func (h *TCOHandler) Calculate(c *gin.Context) {
	var req models.TCORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	in, err := buildInputs(&req.Config, h.vehicleDir)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	// The key covers the resolved config, so edited presets miss.
	key, err := data.Key(req.Config)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "CALCULATION_ERROR", err)
		return
	}

	if !req.Options.NoCache {
		if entry, ok := h.cache.Get(key); ok {
			c.JSON(http.StatusOK, buildTCOResponse(entry, true, req.Options.IncludeTables))
			return
		}
	}

	cmp, err := h.calc.Compare(in.A, in.B, in.Scenario)
	if err != nil {
		log.Printf("TCOHandler: comparison failed: %v", err)
		respondCalcError(c, err)
		return
	}
	for _, w := range cmp.Warnings {
		log.Printf("TCOHandler: warning: %s", w)
	}

	entry := h.cache.Put(key, cmp)
	c.JSON(http.StatusOK, buildTCOResponse(entry, false, req.Options.IncludeTables))
}

// GetTable handles GET /api/v1/tco/:id/table
func (h *TCOHandler) GetTable(c *gin.Context) {
	id := c.Param("id")
	var q models.TableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	entry, ok := h.cache.GetByID(id)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("no result with id %q (results expire)", id))
		return
	}

	var res *tco.Result
	switch q.Vehicle {
	case "", "a":
		res = entry.Comparison.A
	case "b":
		res = entry.Comparison.B
	default:
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New(`vehicle must be "a" or "b"`))
		return
	}
	table := res.Undiscounted
	if q.Discounted {
		table = res.Discounted
	}

	switch q.Format {
	case "", "json":
		c.JSON(http.StatusOK, models.TableResponse{
			ID:         entry.ID,
			Vehicle:    res.Vehicle,
			Discounted: q.Discounted,
			Columns:    columnNames(table),
			Rows:       tableRows(table),
		})
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Vehicle+".csv"))
		c.Status(http.StatusOK)
		if err := tco.WriteTable(c.Writer, table); err != nil {
			log.Printf("TCOHandler: writing CSV for %s: %v", id, err)
		}
	default:
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("unsupported format %q", q.Format))
	}
}

func buildTCOResponse(entry *data.ResultEntry, cached, includeTables bool) models.TCOResponse {
	cmp := entry.Comparison
	return models.TCOResponse{
		ID:     entry.ID,
		Cached: cached,
		Summary: models.ComparisonSummary{
			TCODifference:          cmp.TCODifference,
			UpfrontDifference:      cmp.UpfrontDifference,
			TCORatio:               cmp.TCORatio,
			ParityYearIndex:        cmp.ParityYearIndex,
			ParityYear:             cmp.ParityYear,
			EmissionsSavedTonnes:   cmp.EmissionsSavedTonnes,
			AbatementCost:          cmp.AbatementCost,
			AnnualOperatingSavings: cmp.AnnualOperatingSavings,
			ExternalitySavings:     cmp.ExternalitySavings,
			SocialTCODifference:    cmp.SocialTCODifference,
			SocialBenefitCostRatio: cmp.SocialBenefitCostRatio,
			SocialAbatementCost:    cmp.SocialAbatementCost,
		},
		A:        vehicleResult(cmp.A, includeTables),
		B:        vehicleResult(cmp.B, includeTables),
		Warnings: warningInfos(cmp.Warnings),
	}
}

func vehicleResult(r *tco.Result, includeTable bool) models.VehicleResult {
	out := models.VehicleResult{
		Vehicle:                     r.Vehicle,
		Drivetrain:                  string(r.Drivetrain),
		TotalTCO:                    r.TotalTCO,
		LCOD:                        r.LCOD,
		AnnualDistanceKm:            r.AnnualDistanceKm,
		LifetimeDistanceKm:          r.LifetimeDistanceKm,
		EmissionsTonnes:             r.EmissionsTonnes,
		AnnualOperatingCost:         r.AnnualOperatingCost,
		ExternalityPerKm:            r.ExternalityPerKm,
		ExternalityCost:             r.ExternalityCost,
		SocialTCO:                   r.SocialTCO,
		SocialLCOD:                  r.SocialLCOD,
		SocialCostPerTonneKm:        r.SocialCostPerTonneKm,
		BatteryReplacementYearIndex: r.BatteryReplacementYearIndex,
	}
	for _, e := range r.Externalities {
		out.Externalities = append(out.Externalities, models.ExternalityInfo{
			Pollutant: e.Pollutant,
			PerKm:     e.PerKm,
			Cost:      e.Cost,
		})
	}
	if includeTable {
		out.Annual = tableRows(r.Discounted)
	}
	return out
}

func columnNames(t *tco.Table) []string {
	out := make([]string, len(t.Columns))
	for i, k := range t.Columns {
		out[i] = string(k)
	}
	return out
}

func tableRows(t *tco.Table) []models.TableRow {
	rows := make([]models.TableRow, len(t.Rows))
	for i, r := range t.Rows {
		comps := make(map[string]float64, len(t.Columns))
		for j, k := range t.Columns {
			comps[string(k)] = r.Values[j]
		}
		rows[i] = models.TableRow{
			Year:       r.Year,
			YearIndex:  r.YearIndex,
			Components: comps,
			Total:      r.Total,
		}
	}
	return rows
}

func warningInfos(ws []tco.Warning) []models.WarningInfo {
	if len(ws) == 0 {
		return nil
	}
	out := make([]models.WarningInfo, len(ws))
	for i, w := range ws {
		out[i] = models.WarningInfo{
			Vehicle:   w.Vehicle,
			Component: string(w.Component),
			Year:      w.Year,
			YearIndex: w.YearIndex,
			Message:   w.Message,
		}
	}
	return out
}
