package arm

import (
	"fmt"

	armutils "robot-arm/utils"
)

const eventRejected = "failed to set servo"

// resolveField commits value to the named target if the name is known and the value is
// within that actuator's range. Otherwise it publishes one rejection event and leaves
// the state untouched.
func resolveField(state *TargetState, reg *Registry, name ActuatorName, value int, sink armutils.EventSink) bool {
	spec, ok := reg.Lookup(name)
	if ok && InRange(value, spec.Min, spec.Max) {
		return state.set(name, value)
	}
	sink.Publish(eventRejected, fmt.Sprintf("s: %s, v: %d", name, value))
	return false
}
