package model

import "github.com/m-mizutani/goerr/v2"

// CampusConfig describes the campus map shown to clients
type CampusConfig struct {
	Name        string       `yaml:"name" json:"name"`
	Center      Coordinates  `yaml:"center" json:"center"`
	DefaultZoom int          `yaml:"default_zoom" json:"defaultZoom"`
	Bounds      CampusBounds `yaml:"bounds" json:"bounds"`
	Buildings   []string     `yaml:"buildings,omitempty" json:"buildings,omitempty"`
}

// CampusBounds is the rectangle the map is restricted to
type CampusBounds struct {
	North float64 `yaml:"north" json:"north"`
	South float64 `yaml:"south" json:"south"`
	East  float64 `yaml:"east" json:"east"`
	West  float64 `yaml:"west" json:"west"`
}

// DefaultCampusConfig returns the map settings used when no file is given
func DefaultCampusConfig() *CampusConfig {
	return &CampusConfig{
		Name:        "Campus",
		Center:      Coordinates{Lat: 28.797551089294277, Lng: 77.53732912232692},
		DefaultZoom: 16,
		Bounds: CampusBounds{
			North: 28.802,
			South: 28.793,
			East:  77.542,
			West:  77.532,
		},
	}
}

// Contains reports whether the point lies inside the bounds
func (b CampusBounds) Contains(c Coordinates) bool {
	return c.Lat <= b.North && c.Lat >= b.South && c.Lng <= b.East && c.Lng >= b.West
}

// Validate validates the campus configuration
func (c *CampusConfig) Validate() error {
	if c.Name == "" {
		return goerr.New("campus name is required")
	}
	if c.Bounds.North <= c.Bounds.South {
		return goerr.New("campus bounds north must be greater than south",
			goerr.V("north", c.Bounds.North),
			goerr.V("south", c.Bounds.South))
	}
	if c.Bounds.East <= c.Bounds.West {
		return goerr.New("campus bounds east must be greater than west",
			goerr.V("east", c.Bounds.East),
			goerr.V("west", c.Bounds.West))
	}
	if !c.Bounds.Contains(c.Center) {
		return goerr.New("campus center must be inside bounds",
			goerr.V("center", c.Center))
	}
	if c.DefaultZoom < 1 || c.DefaultZoom > 22 {
		return goerr.New("default zoom must be between 1 and 22",
			goerr.V("zoom", c.DefaultZoom))
	}

	seen := make(map[string]bool)
	for _, b := range c.Buildings {
		if b == "" {
			return goerr.New("building name must not be empty")
		}
		if seen[b] {
			return goerr.New("duplicate building name", goerr.V("building", b))
		}
		seen[b] = true
	}

	return nil
}
