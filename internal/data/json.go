package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vehicle-tco/internal/config"
)

// LoadConfigJSON reads a config saved in the HTTP request shape. Vehicle
// presets resolve relative to the file, then to the working directory.
func LoadConfigJSON(path string) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c config.Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.ResolveVehicleFiles(func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		cand := filepath.Join(filepath.Dir(path), name)
		if _, err := os.Stat(cand); err == nil {
			return cand
		}
		return name
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig picks the JSON or YAML loader by extension and validates.
func LoadConfig(path string) (*config.Config, error) {
	var (
		c   *config.Config
		err error
	)
	if filepath.Ext(path) == ".json" {
		c, err = LoadConfigJSON(path)
	} else {
		c, err = config.LoadUnchecked(path)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
