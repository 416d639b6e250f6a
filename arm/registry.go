package arm

import (
	"github.com/pkg/errors"

	armutils "robot-arm/utils"
)

// ActuatorName identifies one of the four actuators of the arm.
type ActuatorName string

// The four actuators, which are also the recognized command keys.
const (
	Base  ActuatorName = "base"
	Left  ActuatorName = "left"
	Right ActuatorName = "right"
	Grip  ActuatorName = "grip"
)

// ActuatorOrder is the fixed order actuators are attached and driven in.
var ActuatorOrder = [4]ActuatorName{Base, Left, Right, Grip}

// ActuatorSpec is the safe range of one actuator.
type ActuatorSpec struct {
	Name ActuatorName
	Min  int
	Max  int
}

// Midpoint returns the integer midpoint of the spec's range.
func (s ActuatorSpec) Midpoint() int {
	return s.Min + (s.Max-s.Min)/2
}

// DefaultSpecs are the ranges of the stock arm, in ActuatorOrder.
var DefaultSpecs = [4]ActuatorSpec{
	{Name: Base, Min: 0, Max: 180},
	{Name: Left, Min: 30, Max: 80},
	{Name: Right, Min: 60, Max: 150},
	{Name: Grip, Min: 5, Max: 40},
}

// Registry holds the four actuator specs in ActuatorOrder.
type Registry struct {
	specs [4]ActuatorSpec
}

// NewRegistry builds a registry from the defaults with any configured bound overrides applied.
func NewRegistry(conf *armutils.Config) (*Registry, error) {
	r := &Registry{specs: DefaultSpecs}
	if conf == nil {
		return r, nil
	}
	for i, a := range conf.Actuators() {
		spec := &r.specs[i]
		if string(spec.Name) != a.Name {
			return nil, errors.Errorf("actuator %d is %s, expected %s", i, a.Name, spec.Name)
		}
		if a.Min != nil {
			spec.Min = *a.Min
		}
		if a.Max != nil {
			spec.Max = *a.Max
		}
		if spec.Min < 0 {
			return nil, errors.Errorf("%s: min must not be negative, got %d", spec.Name, spec.Min)
		}
		if spec.Max > armutils.MaxActuatorAngle {
			return nil, errors.Errorf("%s: max must be at most %d, got %d", spec.Name, armutils.MaxActuatorAngle, spec.Max)
		}
		if spec.Min > spec.Max {
			return nil, errors.Errorf("%s: min %d is greater than max %d", spec.Name, spec.Min, spec.Max)
		}
	}
	return r, nil
}

// Lookup finds the spec with exactly the given name.
func (r *Registry) Lookup(name ActuatorName) (ActuatorSpec, bool) {
	for _, s := range r.specs {
		if s.Name == name {
			return s, true
		}
	}
	return ActuatorSpec{}, false
}

// Specs returns the specs in ActuatorOrder.
func (r *Registry) Specs() [4]ActuatorSpec {
	return r.specs
}
