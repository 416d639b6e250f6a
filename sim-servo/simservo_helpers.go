package simservo

/*
	Helper functions for the sim servo.
*/

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
)

const (
	minPulseWidth = 500
	maxPulseWidth = 2500
)

// parseConfig parses the provided configuration into a ServoConfig.
func parseConfig(conf resource.Config) (*ServoConfig, error) {
	newConf, err := resource.NativeConfig[*ServoConfig](conf)
	if err != nil {
		return nil, err
	}
	return newConf, nil
}

// initializeServo builds a servo with its limits set from the configuration.
func initializeServo(conf resource.Config, logger logging.Logger, newConf *ServoConfig) (*simServo, error) {
	s := &simServo{
		Named:  conf.ResourceName().AsNamed(),
		name:   conf.Name,
		logger: logger,
		opMgr:  operation.NewSingleOperationManager(),
	}
	if err := s.validateAndSetConfiguration(newConf); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate and set simServo fields based on the configuration.
func (s *simServo) validateAndSetConfiguration(conf *ServoConfig) error {
	if conf.Min >= 0 {
		s.min = uint32(conf.Min)
	}
	s.maxRotation = uint32(conf.MaxRotation)
	if s.maxRotation == 0 {
		s.maxRotation = uint32(servoDefaultMaxRotation)
	}

	// Set to the full rotation if not set
	s.max = s.maxRotation
	if conf.Max > 0 {
		s.max = uint32(conf.Max)
	}
	if s.maxRotation < s.min {
		return errors.New("maxRotation is less than minimum")
	}
	if s.maxRotation < s.max {
		return errors.New("maxRotation is less than maximum")
	}
	return nil
}

// setInitialPosition sets the initial position of the servo based on the provided configuration.
func setInitialPosition(s *simServo, newConf *ServoConfig) error {
	position := 1500 // a 1500us pulsewidth is the middle of travel
	if newConf.StartPos != nil {
		position = angleToPulseWidth(int(*newConf.StartPos), int(s.maxRotation))
	}
	return s.setServoPulseWidth(position)
}

// handleHoldPosition configures the hold position setting for the servo.
func handleHoldPosition(s *simServo, newConf *ServoConfig) {
	if newConf.HoldPos == nil || *newConf.HoldPos {
		s.holdPos = true
		return
	}
	// Release the servo position and disable the servo
	s.holdPos = false
	//nolint:errcheck
	s.setServoPulseWidth(0)
}

// sets the servo's pulse width, 0 disables it
func (s *simServo) setServoPulseWidth(pulseWidth int) error {
	if pulseWidth != 0 && (pulseWidth < minPulseWidth || pulseWidth > maxPulseWidth) {
		return errors.Errorf("servo %s trying to reach out of range position, pulse width %dus", s.name, pulseWidth)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulseWidth = pulseWidth
	if pulseWidth != 0 {
		s.lastPulseWidth = pulseWidth
	}
	return nil
}

// angleToPulseWidth changes the input angle in degrees
// into the corresponding pulsewidth value in microsecond
func angleToPulseWidth(angle, maxRotation int) int {
	pulseWidth := 500 + (2000 * angle / maxRotation)
	return pulseWidth
}

// pulseWidthToAngle changes the pulsewidth value in microsecond
// to the corresponding angle in degrees
func pulseWidthToAngle(pulseWidth, maxRotation int) int {
	angle := maxRotation * (pulseWidth + 1 - 500) / 2000
	return angle
}
