// Package armutils contains the configuration and diagnostic helpers shared by the arm models.
package armutils

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// ArmFamily is the model family for the robot arm module.
var ArmFamily = resource.NewModelFamily("viam", "robot-arm")

const (
	// DefaultStartupPauseMS is how long the startup sweep holds the minimum pose.
	DefaultStartupPauseMS = 150
	// DefaultMaxCommandBytes bounds the size of one command message.
	DefaultMaxCommandBytes = 256
	// MaxActuatorAngle bounds configured ranges, so every pose value has at most three digits.
	MaxActuatorAngle = 360
	// MinCommandBytes fits a pose naming all four actuators with values up to MaxActuatorAngle.
	MinCommandBytes = 64
	// DefaultEventHistory is how many diagnostic events are kept for inspection.
	DefaultEventHistory = 32
)

// ActuatorConfig describes one of the four actuators of the arm.
type ActuatorConfig struct {
	Servo   string `json:"servo"`
	Min     *int   `json:"min,omitempty"`     // overrides the default lower bound
	Max     *int   `json:"max,omitempty"`     // overrides the default upper bound
	Initial *int   `json:"initial,omitempty"` // target used before any command arrives
}

// IndicatorConfig names the board pin toggled after every actuation.
type IndicatorConfig struct {
	Board string `json:"board"`
	Pin   string `json:"pin"`
}

// Config describes the configuration of the arm and the servos it drives.
type Config struct {
	Base  ActuatorConfig `json:"base"`
	Left  ActuatorConfig `json:"left"`
	Right ActuatorConfig `json:"right"`
	Grip  ActuatorConfig `json:"grip"`

	Indicator *IndicatorConfig `json:"indicator,omitempty"`

	StartupPauseMS   *int `json:"startup_pause_ms,omitempty"`
	MaxCommandBytes  int  `json:"max_command_bytes,omitempty"`
	EventHistory     int  `json:"event_history,omitempty"`
	SkipStartupSweep bool `json:"skip_startup_sweep,omitempty"`
}

// Actuators returns the actuator configs keyed by name, in base, left, right, grip order.
func (conf *Config) Actuators() []NamedActuatorConfig {
	return []NamedActuatorConfig{
		{Name: "base", ActuatorConfig: conf.Base},
		{Name: "left", ActuatorConfig: conf.Left},
		{Name: "right", ActuatorConfig: conf.Right},
		{Name: "grip", ActuatorConfig: conf.Grip},
	}
}

// NamedActuatorConfig pairs an actuator config with the field it was read from.
type NamedActuatorConfig struct {
	Name string
	ActuatorConfig
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	var deps []string
	seen := map[string]string{}
	for _, a := range conf.Actuators() {
		if a.Servo == "" {
			return nil, nil, resource.NewConfigValidationFieldRequiredError(path, a.Name+".servo")
		}
		if other, ok := seen[a.Servo]; ok {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("servo %q is used by both %s and %s", a.Servo, other, a.Name))
		}
		seen[a.Servo] = a.Name
		if a.Min != nil && *a.Min < 0 {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("%s: min must not be negative, got %d", a.Name, *a.Min))
		}
		if a.Min != nil && *a.Min > MaxActuatorAngle {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("%s: min must be at most %d, got %d", a.Name, MaxActuatorAngle, *a.Min))
		}
		if a.Max != nil && (*a.Max < 0 || *a.Max > MaxActuatorAngle) {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("%s: max must be within [0, %d], got %d", a.Name, MaxActuatorAngle, *a.Max))
		}
		if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("%s: min %d is greater than max %d", a.Name, *a.Min, *a.Max))
		}
		deps = append(deps, a.Servo)
	}

	if conf.Indicator != nil {
		if conf.Indicator.Board == "" {
			return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "indicator.board")
		}
		if conf.Indicator.Pin == "" {
			return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "indicator.pin")
		}
		deps = append(deps, conf.Indicator.Board)
	}

	if conf.StartupPauseMS != nil && *conf.StartupPauseMS < 0 {
		return nil, nil, resource.NewConfigValidationError(path,
			fmt.Errorf("startup_pause_ms must not be negative, got %d", *conf.StartupPauseMS))
	}
	if conf.MaxCommandBytes != 0 && conf.MaxCommandBytes < MinCommandBytes {
		return nil, nil, resource.NewConfigValidationError(path,
			fmt.Errorf("max_command_bytes must be at least %d, got %d", MinCommandBytes, conf.MaxCommandBytes))
	}
	if conf.EventHistory < 0 {
		return nil, nil, resource.NewConfigValidationError(path,
			fmt.Errorf("event_history must not be negative, got %d", conf.EventHistory))
	}
	return deps, nil, nil
}

// StartupPause returns the configured pause in milliseconds, or the default.
func (conf *Config) StartupPause() int {
	if conf.StartupPauseMS == nil {
		return DefaultStartupPauseMS
	}
	return *conf.StartupPauseMS
}

// CommandLimit returns the maximum accepted command size in bytes.
func (conf *Config) CommandLimit() int {
	if conf.MaxCommandBytes == 0 {
		return DefaultMaxCommandBytes
	}
	return conf.MaxCommandBytes
}

// HistorySize returns how many diagnostic events to retain.
func (conf *Config) HistorySize() int {
	if conf.EventHistory == 0 {
		return DefaultEventHistory
	}
	return conf.EventHistory
}
