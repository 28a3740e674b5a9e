package data

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vehicle-tco/internal/config"
)

// PresetInfo summarises one vehicle preset file.
type PresetInfo struct {
	File          string  `json:"file"`
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Class         string  `json:"class"`
	Drivetrain    string  `json:"drivetrain"`
	PurchasePrice float64 `json:"purchase_price"`
	PayloadTonnes float64 `json:"payload_t"`
	LifespanYears int     `json:"lifespan_years"`
}

// VehicleDir returns the preset directory: VEHICLE_DIR if set, otherwise
// examples/vehicles under the working directory.
func VehicleDir() string {
	dir := os.Getenv("VEHICLE_DIR")
	if dir == "" {
		wd, err := os.Getwd()
		if err == nil {
			dir = filepath.Join(wd, "examples", "vehicles")
		} else {
			dir = "./examples/vehicles"
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir
}

// PresetPath maps a preset name to a file inside dir. Only the base name is
// used, so callers cannot escape dir; ".yaml" is appended when missing.
func PresetPath(dir, name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid vehicle preset name %q", name)
	}
	if ext := filepath.Ext(base); ext != ".yaml" && ext != ".yml" {
		base += ".yaml"
	}
	return filepath.Join(dir, base), nil
}

// ListPresets reads every *.yaml preset in dir, sorted by file name. Files
// that fail to parse are logged and skipped.
func ListPresets(dir string) ([]PresetInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []PresetInfo{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		v, err := config.LoadVehicleFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Printf("[presets] skipping %s: %v", e.Name(), err)
			continue
		}
		name := v.Name
		if name == "" {
			name = strings.TrimSuffix(e.Name(), ext)
		}
		out = append(out, PresetInfo{
			File:          strings.TrimSuffix(e.Name(), ext),
			ID:            v.ID,
			Name:          name,
			Class:         v.Class,
			Drivetrain:    v.Drivetrain,
			PurchasePrice: v.PurchasePrice,
			PayloadTonnes: v.PayloadTonnes,
			LifespanYears: v.LifespanYears,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}
