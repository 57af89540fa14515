package dropzone

import (
	"errors"
	"strings"

	"github.com/yegors/spotten/internal/config"
	"github.com/yegors/spotten/internal/physics"
)

// ErrNotFound is returned when no dropzone matches the lookup
var ErrNotFound = errors.New("dropzone not found")

// Dropzone is a place where jumpers land
type Dropzone struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ElevationFt float64 `json:"elevation_ft"`
	// FixedLandingDirectionsDeg is empty when jumpers land into the wind
	FixedLandingDirectionsDeg []float64 `json:"fixed_landing_directions_deg,omitempty"`

	// Map used by the preview, centered on the DZ
	MapPath        string  `json:"map_path,omitempty"`
	MetersPerPixel float64 `json:"meters_per_pixel,omitempty"`
	MapWidth       int     `json:"map_width,omitempty"`
	MapHeight      int     `json:"map_height,omitempty"`
}

// HasPosition reports whether the dropzone's coordinates are known
func (d Dropzone) HasPosition() bool {
	return d.Latitude != 0 || d.Longitude != 0
}

// FixedLandingDirections returns the landing directions in radians
func (d Dropzone) FixedLandingDirections() []float64 {
	if len(d.FixedLandingDirectionsDeg) == 0 {
		return nil
	}
	out := make([]float64, len(d.FixedLandingDirectionsDeg))
	for i, deg := range d.FixedLandingDirectionsDeg {
		out[i] = physics.DegToRad(deg)
	}
	return out
}

// clone returns d with its own copy of the landing directions
func (d Dropzone) clone() Dropzone {
	if d.FixedLandingDirectionsDeg != nil {
		d.FixedLandingDirectionsDeg = append([]float64(nil), d.FixedLandingDirectionsDeg...)
	}
	return d
}

// Catalog is the read-only set of known dropzones. Every accessor returns copies.
type Catalog struct {
	dropzones []Dropzone
	byID      map[string]int
}

// NewCatalog creates a catalog. The first dropzone is the default.
func NewCatalog(dropzones []Dropzone) *Catalog {
	c := &Catalog{
		dropzones: make([]Dropzone, len(dropzones)),
		byID:      make(map[string]int, len(dropzones)),
	}
	for i, dz := range dropzones {
		dz = dz.clone()
		c.dropzones[i] = dz
		if _, dup := c.byID[dz.ID]; !dup {
			c.byID[dz.ID] = i
		}
	}
	return c
}

// FromConfig creates a catalog from the [[dropzones]] configuration
func FromConfig(cfgs []config.DropzoneConfig) *Catalog {
	dropzones := make([]Dropzone, 0, len(cfgs))
	for _, cfg := range cfgs {
		dropzones = append(dropzones, Dropzone{
			ID:                        cfg.ID,
			Name:                      cfg.Name,
			Latitude:                  cfg.Latitude,
			Longitude:                 cfg.Longitude,
			ElevationFt:               cfg.ElevationFt,
			FixedLandingDirectionsDeg: cfg.FixedLandingDirections,
			MapPath:                   cfg.MapPath,
			MetersPerPixel:            cfg.MetersPerPixel,
			MapWidth:                  cfg.MapWidth,
			MapHeight:                 cfg.MapHeight,
		})
	}
	return NewCatalog(dropzones)
}

// All returns every dropzone in configuration order
func (c *Catalog) All() []Dropzone {
	out := make([]Dropzone, len(c.dropzones))
	for i, dz := range c.dropzones {
		out[i] = dz.clone()
	}
	return out
}

// Get returns the dropzone with the given id
func (c *Catalog) Get(id string) (Dropzone, error) {
	i, ok := c.byID[id]
	if !ok {
		return Dropzone{}, ErrNotFound
	}
	return c.dropzones[i].clone(), nil
}

// FindByName returns the first dropzone whose name matches, ignoring case
func (c *Catalog) FindByName(name string) (Dropzone, error) {
	name = strings.TrimSpace(name)
	for _, dz := range c.dropzones {
		if strings.EqualFold(dz.Name, name) {
			return dz.clone(), nil
		}
	}
	return Dropzone{}, ErrNotFound
}

// Default returns the first dropzone. It fails only on an empty catalog.
func (c *Catalog) Default() (Dropzone, error) {
	if len(c.dropzones) == 0 {
		return Dropzone{}, ErrNotFound
	}
	return c.dropzones[0].clone(), nil
}

// Resolve returns the dropzone with the given id, or the default one when the id is empty or
// unknown.
func (c *Catalog) Resolve(id string) (Dropzone, error) {
	if dz, err := c.Get(id); err == nil {
		return dz, nil
	}
	return c.Default()
}

// Len returns the number of dropzones
func (c *Catalog) Len() int {
	return len(c.dropzones)
}
