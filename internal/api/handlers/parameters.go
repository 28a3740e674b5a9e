package handlers

import (
	"net/http"

	"vehicle-tco/internal/api/models"
	"vehicle-tco/internal/sensitivity"

	"github.com/gin-gonic/gin"
)

// ListParameters handles GET /api/v1/parameters
func ListParameters(c *gin.Context) {
	resp := models.ParametersResponse{
		Metrics: []string{
			string(sensitivity.MetricTCODifference),
			string(sensitivity.MetricLCODA),
			string(sensitivity.MetricSocialTCODifference),
		},
	}
	for _, p := range sensitivity.Parameters {
		info := models.ParameterInfo{
			Name:  string(p),
			Label: p.Label(),
			Unit:  p.Unit(),
		}
		if rp, ok := sensitivity.Policy(p); ok {
			info.DefaultBelow = rp.Below
			info.DefaultAbove = rp.Above
			info.Absolute = rp.Absolute
		}
		resp.Parameters = append(resp.Parameters, info)
	}
	c.JSON(http.StatusOK, resp)
}
