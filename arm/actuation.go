package arm

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/servo"

	armutils "robot-arm/utils"
)

const eventSetting = "setting servos"

// An Indicator is a binary output flipped once per completed actuation.
type Indicator interface {
	Toggle(ctx context.Context) error
	Level() bool
}

// pinIndicator drives a board GPIO pin. The level is tracked here and never read back from the pin.
type pinIndicator struct {
	pin board.GPIOPin

	mu    sync.Mutex
	level bool
}

func (p *pinIndicator) Toggle(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.pin.Set(ctx, !p.level, nil); err != nil {
		return errors.Wrap(err, "toggling indicator pin")
	}
	p.level = !p.level
	return nil
}

func (p *pinIndicator) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// latchIndicator is used when no pin is configured.
type latchIndicator struct {
	mu    sync.Mutex
	level bool
}

func (l *latchIndicator) Toggle(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = !l.level
	return nil
}

func (l *latchIndicator) Level() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Engine drives the four servos to a TargetState.
type Engine struct {
	servos    [4]servo.Servo
	indicator Indicator
	sink      armutils.EventSink
}

// NewEngine returns an engine for servos given in ActuatorOrder.
// A nil indicator is replaced by an in-memory latch.
func NewEngine(servos [4]servo.Servo, indicator Indicator, sink armutils.EventSink) *Engine {
	if indicator == nil {
		indicator = &latchIndicator{}
	}
	return &Engine{servos: servos, indicator: indicator, sink: sink}
}

// Apply commands every servo to its target in ActuatorOrder, then toggles the indicator.
// A failing servo does not stop the others from being commanded.
func (e *Engine) Apply(ctx context.Context, state TargetState) error {
	e.sink.Publish(eventSetting, "")

	var err error
	for i, name := range ActuatorOrder {
		target, _ := state.Get(name)
		if moveErr := e.servos[i].Move(ctx, uint32(target), nil); moveErr != nil {
			err = multierr.Combine(err, errors.Wrapf(moveErr, "moving %s servo to %d", name, target))
		}
	}
	return multierr.Combine(err, e.indicator.Toggle(ctx))
}

// Indicator returns the engine's completion indicator.
func (e *Engine) Indicator() Indicator {
	return e.indicator
}
