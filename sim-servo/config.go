// Package simservo contains servo config to ensure its limits are consistent.
package simservo

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// ServoConfig is the config for a simulated servo.
type ServoConfig struct {
	Min         int      `json:"min,omitempty"`                    // specifies a user inputted minimum position limitation
	Max         int      `json:"max,omitempty"`                    // specifies a user inputted maximum position limitation
	StartPos    *float64 `json:"starting_position_degs,omitempty"` // specifies a starting position. Defaults to 90
	HoldPos     *bool    `json:"hold_position,omitempty"`          // defaults True. False holds for 250 ms then disables servo
	MaxRotation int      `json:"max_rotation_deg,omitempty"`       // specifies a hardware position limitation. Defaults to 180
}

// Validate ensures all parts of the config are valid.
func (config *ServoConfig) Validate(path string) ([]string, []string, error) {
	if config.Min < 0 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("min must not be negative"))
	}
	if config.Max > 0 && config.Min > config.Max {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("min is greater than max"))
	}
	if config.StartPos != nil && *config.StartPos < 0 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("starting_position_degs must not be negative"))
	}
	return nil, nil, nil
}
