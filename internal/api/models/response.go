package models

// TCOResponse represents the response from a comparison
type TCOResponse struct {
	ID       string            `json:"id"`
	Cached   bool              `json:"cached"`
	Summary  ComparisonSummary `json:"summary"`
	A        VehicleResult     `json:"vehicle_a"`
	B        VehicleResult     `json:"vehicle_b"`
	Warnings []WarningInfo     `json:"warnings,omitempty"`
}

// ComparisonSummary contains the A-versus-B metrics. Pointer fields are
// null when undefined.
type ComparisonSummary struct {
	TCODifference          float64  `json:"tco_difference"`
	UpfrontDifference      float64  `json:"upfront_difference"`
	TCORatio               *float64 `json:"tco_ratio"`
	ParityYearIndex        *int     `json:"parity_year_index"`
	ParityYear             *int     `json:"parity_year"`
	EmissionsSavedTonnes   float64  `json:"emissions_saved_t"`
	AbatementCost          *float64 `json:"abatement_cost_per_t"`
	AnnualOperatingSavings float64  `json:"annual_operating_savings"`
	ExternalitySavings     float64  `json:"externality_savings"`
	SocialTCODifference    float64  `json:"social_tco_difference"`
	SocialBenefitCostRatio *float64 `json:"social_benefit_cost_ratio"`
	SocialAbatementCost    *float64 `json:"social_abatement_cost_per_t"`
}

// VehicleResult contains one vehicle's totals
type VehicleResult struct {
	Vehicle                     string            `json:"vehicle"`
	Drivetrain                  string            `json:"drivetrain"`
	TotalTCO                    float64           `json:"total_tco"`
	LCOD                        *float64          `json:"lcod"`
	AnnualDistanceKm            float64           `json:"annual_distance_km"`
	LifetimeDistanceKm          float64           `json:"lifetime_distance_km"`
	EmissionsTonnes             float64           `json:"emissions_t"`
	AnnualOperatingCost         float64           `json:"annual_operating_cost"`
	ExternalityPerKm            float64           `json:"externality_per_km"`
	ExternalityCost             float64           `json:"externality_cost"`
	Externalities               []ExternalityInfo `json:"externalities,omitempty"`
	SocialTCO                   float64           `json:"social_tco"`
	SocialLCOD                  *float64          `json:"social_lcod"`
	SocialCostPerTonneKm        *float64          `json:"social_cost_per_tonne_km"`
	BatteryReplacementYearIndex *int              `json:"battery_replacement_year_index"`
	Annual                      []TableRow        `json:"annual,omitempty"`
}

// ExternalityInfo is one pollutant's social cost
type ExternalityInfo struct {
	Pollutant string  `json:"pollutant"`
	PerKm     float64 `json:"per_km"`
	Cost      float64 `json:"cost"`
}

// TableRow is one year of a cost table
type TableRow struct {
	Year       int                `json:"year"`
	YearIndex  int                `json:"year_index"`
	Components map[string]float64 `json:"components"`
	Total      float64            `json:"total"`
}

// TableResponse is one vehicle's annual cost table
type TableResponse struct {
	ID         string     `json:"id"`
	Vehicle    string     `json:"vehicle"`
	Discounted bool       `json:"discounted"`
	Columns    []string   `json:"columns"`
	Rows       []TableRow `json:"rows"`
}

// WarningInfo is a recoverable component fault; the cell was zeroed.
type WarningInfo struct {
	Vehicle   string `json:"vehicle"`
	Component string `json:"component"`
	Year      int    `json:"year"`
	YearIndex int    `json:"year_index"`
	Message   string `json:"message"`
}

// SensitivityResponse is one sweep, ordered by value.
type SensitivityResponse struct {
	Parameter string             `json:"parameter"`
	Label     string             `json:"label"`
	Unit      string             `json:"unit"`
	BaseValue float64            `json:"base_value"`
	Points    []SensitivityPoint `json:"points"`
	Warnings  []WarningInfo      `json:"warnings,omitempty"`
}

// SensitivityPoint contains the comparison at one swept value
type SensitivityPoint struct {
	Value               float64  `json:"value"`
	IsBase              bool     `json:"is_base"`
	TCOA                float64  `json:"tco_a"`
	TCOB                float64  `json:"tco_b"`
	TCODifference       float64  `json:"tco_difference"`
	SocialTCODifference float64  `json:"social_tco_difference"`
	LCODA               *float64 `json:"lcod_a"`
	LCODB               *float64 `json:"lcod_b"`
	ParityYear          *int     `json:"parity_year"`
}

// TornadoResponse lists bars by descending swing.
type TornadoResponse struct {
	Metric string       `json:"metric"`
	Bars   []TornadoBar `json:"bars"`
}

// TornadoBar is one parameter's low/high effect
type TornadoBar struct {
	Parameter   string  `json:"parameter"`
	Label       string  `json:"label"`
	BaseValue   float64 `json:"base_value"`
	LowValue    float64 `json:"low_value"`
	HighValue   float64 `json:"high_value"`
	BaseOutcome float64 `json:"base_outcome"`
	LowImpact   float64 `json:"low_impact"`
	HighImpact  float64 `json:"high_impact"`
	Swing       float64 `json:"swing"`
}

// VehicleInfo represents information about a vehicle preset
type VehicleInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs VehicleSpecs `json:"specs"`
}

// VehicleSpecs contains headline vehicle attributes
type VehicleSpecs struct {
	Class         string  `json:"class"`
	Drivetrain    string  `json:"drivetrain"`
	PurchasePrice float64 `json:"purchase_price"`
	PayloadTonnes float64 `json:"payload_t"`
	LifespanYears int     `json:"lifespan_years"`
}

// ParameterInfo describes a sweepable parameter
type ParameterInfo struct {
	Name         string  `json:"name"`
	Label        string  `json:"label"`
	Unit         string  `json:"unit"`
	DefaultBelow float64 `json:"default_below"`
	DefaultAbove float64 `json:"default_above"`
	Absolute     bool    `json:"absolute"`
}

// ParametersResponse lists sweep parameters and tornado metrics
type ParametersResponse struct {
	Parameters []ParameterInfo `json:"parameters"`
	Metrics    []string        `json:"metrics"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
