package arm

import (
	"testing"

	"go.viam.com/test"

	armutils "robot-arm/utils"
)

// recordingSink keeps every published event in order.
type recordingSink struct {
	events []armutils.Event
}

func (r *recordingSink) Publish(name, payload string) {
	r.events = append(r.events, armutils.Event{Name: name, Payload: payload})
}

func (r *recordingSink) named(name string) []armutils.Event {
	var out []armutils.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func TestTargetState(t *testing.T) {
	reg, err := NewRegistry(nil)
	test.That(t, err, test.ShouldBeNil)

	t.Run("defaults", func(t *testing.T) {
		state, err := NewTargetState(nil, reg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state, test.ShouldResemble, TargetState{Base: 90, Left: 30, Right: 90, Grip: 20})
		test.That(t, state.Map(), test.ShouldResemble, map[string]interface{}{
			"base": 90, "left": 30, "right": 90, "grip": 20,
		})
	})

	t.Run("configured initial targets", func(t *testing.T) {
		conf := &armutils.Config{Right: armutils.ActuatorConfig{Servo: "s2", Initial: intPtr(120)}}
		state, err := NewTargetState(conf, reg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state.Right, test.ShouldEqual, 120)
		test.That(t, state.Base, test.ShouldEqual, 90)

		conf = &armutils.Config{Right: armutils.ActuatorConfig{Servo: "s2", Initial: intPtr(20)}}
		_, err = NewTargetState(conf, reg)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "initial right target 20 is outside [60, 150]")
	})

	t.Run("default outside a narrowed range moves to the midpoint", func(t *testing.T) {
		conf := &armutils.Config{Base: armutils.ActuatorConfig{Servo: "s0", Min: intPtr(100), Max: intPtr(140)}}
		narrowed, err := NewRegistry(conf)
		test.That(t, err, test.ShouldBeNil)
		state, err := NewTargetState(conf, narrowed)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state.Base, test.ShouldEqual, 120)
	})

	t.Run("get unknown name", func(t *testing.T) {
		_, ok := DefaultTargetState.Get("wrist")
		test.That(t, ok, test.ShouldBeFalse)
	})
}

func TestResolveField(t *testing.T) {
	reg, err := NewRegistry(nil)
	test.That(t, err, test.ShouldBeNil)

	t.Run("accepts every value in range", func(t *testing.T) {
		for _, spec := range reg.Specs() {
			for v := spec.Min; v <= spec.Max; v++ {
				state := DefaultTargetState
				sink := &recordingSink{}
				test.That(t, resolveField(&state, reg, spec.Name, v, sink), test.ShouldBeTrue)
				got, _ := state.Get(spec.Name)
				test.That(t, got, test.ShouldEqual, v)
				test.That(t, sink.events, test.ShouldBeEmpty)
			}
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		state := DefaultTargetState
		sink := &recordingSink{}
		test.That(t, resolveField(&state, reg, Left, 999, sink), test.ShouldBeFalse)
		test.That(t, state, test.ShouldResemble, DefaultTargetState)
		test.That(t, sink.events, test.ShouldHaveLength, 1)
		test.That(t, sink.events[0].Name, test.ShouldEqual, "failed to set servo")
		test.That(t, sink.events[0].Payload, test.ShouldEqual, "s: left, v: 999")

		test.That(t, resolveField(&state, reg, Grip, 4, sink), test.ShouldBeFalse)
		test.That(t, resolveField(&state, reg, Grip, 41, sink), test.ShouldBeFalse)
		test.That(t, state, test.ShouldResemble, DefaultTargetState)
		test.That(t, sink.events, test.ShouldHaveLength, 3)
	})

	t.Run("rejects unknown name", func(t *testing.T) {
		state := DefaultTargetState
		sink := &recordingSink{}
		test.That(t, resolveField(&state, reg, "wrist", 10, sink), test.ShouldBeFalse)
		test.That(t, state, test.ShouldResemble, DefaultTargetState)
		test.That(t, sink.events, test.ShouldHaveLength, 1)
		test.That(t, sink.events[0].Payload, test.ShouldEqual, "s: wrist, v: 10")
	})
}
