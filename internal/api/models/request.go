package models

import "vehicle-tco/internal/config"

// TCORequest represents the request body for a two-vehicle comparison.
// Config has the same shape as the YAML config file.
type TCORequest struct {
	Config  config.Config `json:"config" binding:"required"`
	Options TCOOptions    `json:"options,omitempty"`
}

// TCOOptions contains optional comparison parameters
type TCOOptions struct {
	IncludeTables bool `json:"include_tables,omitempty"` // default: false
	NoCache       bool `json:"no_cache,omitempty"`
}

// SensitivityRequest runs a one-parameter sweep.
type SensitivityRequest struct {
	Config    config.Config `json:"config" binding:"required"`
	Parameter string        `json:"parameter" binding:"required"`
	Values    []float64     `json:"values,omitempty"` // empty = default range
	Points    int           `json:"points,omitempty"` // default: 11
}

// TornadoRequest ranks parameters by their swing on one metric.
type TornadoRequest struct {
	Config     config.Config `json:"config" binding:"required"`
	Parameters []string      `json:"parameters,omitempty"` // empty = all
	Metric     string        `json:"metric,omitempty"`     // default: tco_difference
}

// TableQuery selects the table returned by GET /tco/:id/table.
type TableQuery struct {
	Vehicle    string `form:"vehicle,omitempty"`    // "a" (default) or "b"
	Discounted bool   `form:"discounted,omitempty"` // default: false
	Format     string `form:"format,omitempty"`     // "json" (default) or "csv"
}
