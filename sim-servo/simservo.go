// Package simservo implements a servo that emulates a pulse width driven hobby servo.
package simservo

/*
	This driver keeps the pulse width a real servo would be sent (500-2500us
	across max_rotation_deg) and reports positions back from it, so an arm can
	be exercised without hardware. Moves take as long as the pulse width, which
	is also how long the pi servo waits for a pulse to go out.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
	"go.viam.com/utils"

	armutils "robot-arm/utils"
)

// Model is the model of the simulated servo.
var Model = armutils.ArmFamily.WithModel("sim-servo")

var (
	holdTime                = 250 * time.Millisecond
	servoDefaultMaxRotation = 180
)

// init registers a simulated servo.
func init() {
	resource.RegisterComponent(
		servo.API,
		Model,
		resource.Registration[servo.Servo, *ServoConfig]{
			Constructor: newSimServo,
		},
	)
}

func newSimServo(
	ctx context.Context,
	_ resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (servo.Servo, error) {
	newConf, err := parseConfig(conf)
	if err != nil {
		return nil, err
	}

	theServo, err := initializeServo(conf, logger, newConf)
	if err != nil {
		return nil, err
	}
	if err := setInitialPosition(theServo, newConf); err != nil {
		return nil, err
	}
	handleHoldPosition(theServo, newConf)

	logger.CDebugf(ctx, "sim servo %s ready at %d degrees", conf.Name, pulseWidthToAngle(theServo.lastPulseWidth, int(theServo.maxRotation)))
	return theServo, nil
}

// simServo implements a servo.Servo in memory.
type simServo struct {
	resource.Named
	resource.AlwaysRebuild
	logger      logging.Logger
	name        string
	min, max    uint32
	maxRotation uint32
	opMgr       *operation.SingleOperationManager
	holdPos     bool

	mu             sync.Mutex
	pulseWidth     int // pulsewidth value, 500-2500us is 0-max rotation, 0 is off
	lastPulseWidth int // last pulse width sent, kept after the servo is released
	moves          int
}

// Move moves the servo to the given angle, clamped to the configured limits.
// This will block until done or a new operation cancels this one.
func (s *simServo) Move(ctx context.Context, angle uint32, extra map[string]interface{}) error {
	ctx, done := s.opMgr.New(ctx)
	defer done()

	if angle < s.min {
		angle = s.min
	}
	if angle > s.max {
		angle = s.max
	}
	pulseWidth := angleToPulseWidth(int(angle), int(s.maxRotation))
	if err := s.setServoPulseWidth(pulseWidth); err != nil {
		return err
	}

	s.mu.Lock()
	s.moves++
	s.mu.Unlock()

	// duration of pulsewidth sent on pin while the servo moves
	if !utils.SelectContextOrWait(ctx, time.Duration(pulseWidth)*time.Microsecond) {
		return ctx.Err()
	}

	if !s.holdPos { // release the servo once it has had time to reach the position
		if !utils.SelectContextOrWait(ctx, holdTime) {
			return ctx.Err()
		}
		return s.setServoPulseWidth(0)
	}
	return nil
}

// Position returns the current set angle (degrees) of the servo.
func (s *simServo) Position(ctx context.Context, extra map[string]interface{}) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(pulseWidthToAngle(s.lastPulseWidth, int(s.maxRotation))), nil
}

// Stop stops the servo. It is assumed the servo stops immediately.
func (s *simServo) Stop(ctx context.Context, extra map[string]interface{}) error {
	_, done := s.opMgr.New(ctx)
	defer done()
	return s.setServoPulseWidth(0)
}

func (s *simServo) IsMoving(ctx context.Context) (bool, error) {
	return s.opMgr.OpRunning(), nil
}

// DoCommand reports the emulated pulse width and how many moves have been made.
func (s *simServo) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if _, ok := cmd["pulse_width"]; !ok {
		return nil, errors.New("unknown command, expected \"pulse_width\"")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]interface{}{
		"pulse_width_us":      s.pulseWidth,
		"last_pulse_width_us": s.lastPulseWidth,
		"moves":               s.moves,
	}, nil
}

// Close releases the servo.
func (s *simServo) Close(_ context.Context) error {
	return s.setServoPulseWidth(0)
}
