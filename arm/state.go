package arm

import (
	"github.com/pkg/errors"

	armutils "robot-arm/utils"
)

// TargetState is the position each actuator should be driven to next.
// Every field always lies within its actuator's range.
type TargetState struct {
	Base  int
	Left  int
	Right int
	Grip  int
}

// DefaultTargetState is the state before any command has been handled.
var DefaultTargetState = TargetState{Base: 90, Left: 30, Right: 90, Grip: 20}

// NewTargetState returns the default state with configured initial targets applied.
// A configured initial target outside its range is an error; a default that falls
// outside a narrowed range is replaced by the range midpoint.
func NewTargetState(conf *armutils.Config, reg *Registry) (TargetState, error) {
	state := DefaultTargetState
	configured := map[ActuatorName]bool{}
	if conf != nil {
		for _, a := range conf.Actuators() {
			if a.Initial != nil {
				state.set(ActuatorName(a.Name), *a.Initial)
				configured[ActuatorName(a.Name)] = true
			}
		}
	}
	for _, spec := range reg.Specs() {
		v, _ := state.Get(spec.Name)
		if InRange(v, spec.Min, spec.Max) {
			continue
		}
		if configured[spec.Name] {
			return TargetState{}, errors.Errorf("initial %s target %d is outside [%d, %d]",
				spec.Name, v, spec.Min, spec.Max)
		}
		state.set(spec.Name, spec.Midpoint())
	}
	return state, nil
}

// Get returns the target for the named actuator.
func (s TargetState) Get(name ActuatorName) (int, bool) {
	switch name {
	case Base:
		return s.Base, true
	case Left:
		return s.Left, true
	case Right:
		return s.Right, true
	case Grip:
		return s.Grip, true
	default:
		return 0, false
	}
}

func (s *TargetState) set(name ActuatorName, v int) bool {
	switch name {
	case Base:
		s.Base = v
	case Left:
		s.Left = v
	case Right:
		s.Right = v
	case Grip:
		s.Grip = v
	default:
		return false
	}
	return true
}

// Map returns the targets keyed by actuator name.
func (s TargetState) Map() map[string]interface{} {
	return map[string]interface{}{
		string(Base):  s.Base,
		string(Left):  s.Left,
		string(Right): s.Right,
		string(Grip):  s.Grip,
	}
}
