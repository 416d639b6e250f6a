package arm

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/testutils/inject"
	"go.viam.com/test"
)

type move struct {
	servo string
	angle uint32
}

// moveLog records Move calls across a set of injected servos.
type moveLog struct {
	mu    sync.Mutex
	moves []move
}

func (l *moveLog) servo(name string) *inject.Servo {
	s := inject.NewServo(name)
	s.MoveFunc = func(ctx context.Context, angle uint32, extra map[string]interface{}) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.moves = append(l.moves, move{servo: name, angle: angle})
		return nil
	}
	return s
}

func (l *moveLog) take() []move {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.moves
	l.moves = nil
	return out
}

func TestEngineApply(t *testing.T) {
	ctx := context.Background()

	t.Run("drives servos in order then toggles", func(t *testing.T) {
		log := &moveLog{}
		sink := &recordingSink{}
		servos := [4]servo.Servo{log.servo("b"), log.servo("l"), log.servo("r"), log.servo("g")}
		engine := NewEngine(servos, nil, sink)

		state := TargetState{Base: 45, Left: 50, Right: 90, Grip: 15}
		err := engine.Apply(ctx, state)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, log.take(), test.ShouldResemble, []move{
			{servo: "b", angle: 45},
			{servo: "l", angle: 50},
			{servo: "r", angle: 90},
			{servo: "g", angle: 15},
		})
		test.That(t, sink.named("setting servos"), test.ShouldHaveLength, 1)
		test.That(t, engine.Indicator().Level(), test.ShouldBeTrue)

		// idempotent: the same state issues the same commands again
		err = engine.Apply(ctx, state)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, log.take(), test.ShouldResemble, []move{
			{servo: "b", angle: 45},
			{servo: "l", angle: 50},
			{servo: "r", angle: 90},
			{servo: "g", angle: 15},
		})
		test.That(t, engine.Indicator().Level(), test.ShouldBeFalse)
	})

	t.Run("a failing servo does not stop the rest", func(t *testing.T) {
		log := &moveLog{}
		left := inject.NewServo("l")
		left.MoveFunc = func(ctx context.Context, angle uint32, extra map[string]interface{}) error {
			return errors.New("stalled")
		}
		servos := [4]servo.Servo{log.servo("b"), left, log.servo("r"), log.servo("g")}
		engine := NewEngine(servos, nil, &recordingSink{})

		err := engine.Apply(ctx, DefaultTargetState)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "moving left servo to 30: stalled")
		test.That(t, log.take(), test.ShouldHaveLength, 3)
		test.That(t, engine.Indicator().Level(), test.ShouldBeTrue)
	})

	t.Run("pin indicator", func(t *testing.T) {
		var levels []bool
		pin := &inject.GPIOPin{}
		pin.SetFunc = func(ctx context.Context, high bool, extra map[string]interface{}) error {
			levels = append(levels, high)
			return nil
		}
		log := &moveLog{}
		servos := [4]servo.Servo{log.servo("b"), log.servo("l"), log.servo("r"), log.servo("g")}
		engine := NewEngine(servos, &pinIndicator{pin: pin}, &recordingSink{})

		for i := 0; i < 3; i++ {
			test.That(t, engine.Apply(ctx, DefaultTargetState), test.ShouldBeNil)
		}
		test.That(t, levels, test.ShouldResemble, []bool{true, false, true})
		test.That(t, engine.Indicator().Level(), test.ShouldBeTrue)

		pin.SetFunc = func(ctx context.Context, high bool, extra map[string]interface{}) error {
			return errors.New("pin busy")
		}
		err := engine.Apply(ctx, DefaultTargetState)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "toggling indicator pin")
		test.That(t, engine.Indicator().Level(), test.ShouldBeTrue)
	})
}
