package loom

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Options configures an Editor. All geometry tolerances are in screen
// pixels; the hit-tester de-scales them so they feel constant at any zoom.
type Options struct {
	// MinScale and MaxScale bound the zoom factor.
	MinScale float64 `yaml:"minScale" validate:"gt=0"`
	MaxScale float64 `yaml:"maxScale" validate:"gtefield=MinScale"`
	// ZoomStep is the scale multiplier applied per wheel notch.
	ZoomStep float64 `yaml:"zoomStep" validate:"gt=1"`

	// GridSize is the grid cell edge in world units.
	GridSize   float64 `yaml:"gridSize" validate:"gt=0"`
	SnapToGrid bool    `yaml:"snapToGrid"`
	ShowGrid   bool    `yaml:"showGrid"`

	// DragDeadZone is the pointer travel in pixels before a background
	// press becomes a box-select.
	DragDeadZone float64 `yaml:"dragDeadZone" validate:"gte=0"`

	// PortHitRadius is the pick radius around a port center.
	PortHitRadius float64 `yaml:"portHitRadius" validate:"gt=0"`
	// GripHitRadius is the pick radius around a connection endpoint.
	// Slightly larger than PortHitRadius so grips win near endpoints.
	GripHitRadius float64 `yaml:"gripHitRadius" validate:"gt=0"`
	// ConnectionHitDistance is the pick distance from a connection body.
	ConnectionHitDistance float64 `yaml:"connectionHitDistance" validate:"gt=0"`
	// HandleHitRadius is the pick radius around a resize handle.
	HandleHitRadius float64 `yaml:"handleHitRadius" validate:"gt=0"`
}

// DefaultOptions returns the options used when no overrides are supplied.
func DefaultOptions() Options {
	return Options{
		MinScale:              0.2,
		MaxScale:              4.0,
		ZoomStep:              1.1,
		GridSize:              20,
		SnapToGrid:            false,
		ShowGrid:              true,
		DragDeadZone:          4,
		PortHitRadius:         8,
		GripHitRadius:         10,
		ConnectionHitDistance: 6,
		HandleHitRadius:       7,
	}
}

var optionsValidator = validator.New()

// Validate checks option invariants (positive radii, ordered scale bounds).
func (o Options) Validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return fmt.Errorf("validate options: %w", err)
	}
	return nil
}

// LoadOptions parses YAML option overrides on top of DefaultOptions and
// validates the result. The caller supplies bytes; loom performs no file I/O.
func LoadOptions(yamlData []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(yamlData, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
