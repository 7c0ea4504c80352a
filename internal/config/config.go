// Package config defines the machine and material parameters consumed by the
// hot-wire and nesting pipelines. The values are passed explicitly into each
// job or planner constructor; nothing reads configuration at runtime, so
// independent jobs can run concurrently without shared state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultKerf is the documented fallback kerf (inches) applied when a
// material has no entry in the kerf table. A missing entry is a config gap,
// not a geometry fault, so generation proceeds with this value and the
// caller logs the substitution.
const DefaultKerf = 0.040

// Known foam core materials. Kerf and wire temperature vary per material.
const (
	MaterialStyrofoam  = "styrofoam_blue"
	MaterialUrethane   = "urethane_2lb"
	MaterialDivinycell = "divinycell_h45"
)

// StockDim is one available stock sheet size.
type StockDim struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MachineConfig holds hot-wire and nesting parameters. All fields are
// pointers so a partial JSON file only overrides what it names; use the
// Get* accessors for resolved values. Lengths are in the configured unit
// system (inches by default), temperatures in °F.
type MachineConfig struct {
	Units *string `json:"units,omitempty"`

	// Hot-wire cutting
	WireDiameter      *float64 `json:"wire_diameter,omitempty"`
	WireTempStyrofoam *float64 `json:"wire_temp_styrofoam,omitempty"`
	WireTempUrethane  *float64 `json:"wire_temp_urethane,omitempty"`
	FeedRate          *float64 `json:"feed_rate,omitempty"`
	LeadDistance      *float64 `json:"lead_distance,omitempty"`
	SafeHeight        *float64 `json:"safe_height,omitempty"`
	PreheatDwell      *float64 `json:"preheat_dwell,omitempty"` // seconds
	Stations          *int     `json:"stations,omitempty"`

	// Kerf compensation by material
	KerfStyrofoam  *float64 `json:"kerf_styrofoam,omitempty"`
	KerfUrethane   *float64 `json:"kerf_urethane,omitempty"`
	KerfDivinycell *float64 `json:"kerf_divinycell,omitempty"`

	// Nesting
	StockSheets    []StockDim          `json:"stock_sheets,omitempty"`
	Margin         *float64            `json:"margin,omitempty"`
	Spacing        *float64            `json:"spacing,omitempty"`
	DogboneRadius  *float64            `json:"dogbone_radius,omitempty"`
	FilletRadius   *float64            `json:"fillet_radius,omitempty"`
	EngravingDepth *float64            `json:"engraving_depth,omitempty"`
	SheetGrainDeg  *float64            `json:"sheet_grain_deg,omitempty"`
	CutOrders      map[string][]string `json:"cut_orders,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// Default returns the canonical machine configuration. The numbers come from
// the Long-EZ build parameters: NiChrome 0.032 wire, styrofoam kerf 0.045 in,
// urethane 0.035 in, base feed 4 in/min.
func Default() *MachineConfig {
	return &MachineConfig{
		Units:             ptrString("inch"),
		WireDiameter:      ptrFloat64(0.032),
		WireTempStyrofoam: ptrFloat64(400),
		WireTempUrethane:  ptrFloat64(500),
		FeedRate:          ptrFloat64(4.0),
		LeadDistance:      ptrFloat64(0.5),
		SafeHeight:        ptrFloat64(5.0),
		PreheatDwell:      ptrFloat64(2.0),
		Stations:          ptrInt(240),
		KerfStyrofoam:     ptrFloat64(0.045),
		KerfUrethane:      ptrFloat64(0.035),
		KerfDivinycell:    ptrFloat64(0.030),
		StockSheets:       []StockDim{{Width: 96, Height: 48}},
		Margin:            ptrFloat64(0.25),
		Spacing:           ptrFloat64(0.125),
		DogboneRadius:     ptrFloat64(0.0),
		FilletRadius:      ptrFloat64(0.0),
		EngravingDepth:    ptrFloat64(0.02),
		SheetGrainDeg:     ptrFloat64(0.0),
	}
}

// Load reads a MachineConfig from a JSON file, starting from Default() so a
// partial file only overrides the fields it names. The path must have a
// .json extension and the file must be under 1MB.
func Load(path string) (*MachineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// KerfFor returns the kerf for a material. The second return reports whether
// the material had a table entry; when false the documented DefaultKerf is
// returned and the caller should log the substitution.
func (c *MachineConfig) KerfFor(material string) (float64, bool) {
	switch material {
	case MaterialStyrofoam:
		if c.KerfStyrofoam != nil {
			return *c.KerfStyrofoam, true
		}
	case MaterialUrethane:
		if c.KerfUrethane != nil {
			return *c.KerfUrethane, true
		}
	case MaterialDivinycell:
		if c.KerfDivinycell != nil {
			return *c.KerfDivinycell, true
		}
	}
	return DefaultKerf, false
}

// CutOrderFor returns the ordered cut steps for a laminate, falling back to
// the default engrave → pocket → profile sequence.
func (c *MachineConfig) CutOrderFor(laminate string) []string {
	if steps, ok := c.CutOrders[laminate]; ok && len(steps) > 0 {
		return steps
	}
	return []string{"ENGRAVE", "POCKET", "PROFILE"}
}

// GetUnits returns the units string, defaulting to inches.
func (c *MachineConfig) GetUnits() string {
	if c.Units != nil {
		return *c.Units
	}
	return "inch"
}

// GetFeedRate returns the base feed rate.
func (c *MachineConfig) GetFeedRate() float64 {
	if c.FeedRate != nil {
		return *c.FeedRate
	}
	return 4.0
}

// GetLeadDistance returns the lead-in/out distance.
func (c *MachineConfig) GetLeadDistance() float64 {
	if c.LeadDistance != nil {
		return *c.LeadDistance
	}
	return 0.5
}

// GetSafeHeight returns the rapid clearance height.
func (c *MachineConfig) GetSafeHeight() float64 {
	if c.SafeHeight != nil {
		return *c.SafeHeight
	}
	return 5.0
}

// GetPreheatDwell returns the heater preheat dwell in seconds.
func (c *MachineConfig) GetPreheatDwell() float64 {
	if c.PreheatDwell != nil {
		return *c.PreheatDwell
	}
	return 2.0
}

// GetStations returns the synchronized station count for toolpaths.
func (c *MachineConfig) GetStations() int {
	if c.Stations != nil {
		return *c.Stations
	}
	return 240
}

// GetMargin returns the sheet edge margin.
func (c *MachineConfig) GetMargin() float64 {
	if c.Margin != nil {
		return *c.Margin
	}
	return 0.25
}

// GetSpacing returns the part-to-part spacing.
func (c *MachineConfig) GetSpacing() float64 {
	if c.Spacing != nil {
		return *c.Spacing
	}
	return 0.125
}

// GetDogboneRadius returns the dogbone relief radius.
func (c *MachineConfig) GetDogboneRadius() float64 {
	if c.DogboneRadius != nil {
		return *c.DogboneRadius
	}
	return 0
}

// GetFilletRadius returns the fillet relief radius.
func (c *MachineConfig) GetFilletRadius() float64 {
	if c.FilletRadius != nil {
		return *c.FilletRadius
	}
	return 0
}

// GetEngravingDepth returns the label engraving depth.
func (c *MachineConfig) GetEngravingDepth() float64 {
	if c.EngravingDepth != nil {
		return *c.EngravingDepth
	}
	return 0.02
}

// GetSheetGrainDeg returns the stock sheet grain direction in degrees.
func (c *MachineConfig) GetSheetGrainDeg() float64 {
	if c.SheetGrainDeg != nil {
		return *c.SheetGrainDeg
	}
	return 0
}
