package arm

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/resource"
	"go.viam.com/utils"

	armutils "robot-arm/utils"
)

const (
	eventAttached     = "attached servo"
	eventAttachFailed = "Cannot attach to servo"
)

// attachServos resolves the configured servos in ActuatorOrder and stops at the first one
// that cannot be found. Each attempt is published with the actuator's ordinal index.
func attachServos(deps resource.Dependencies, conf *armutils.Config, sink armutils.EventSink) ([4]servo.Servo, error) {
	var servos [4]servo.Servo
	for i, a := range conf.Actuators() {
		s, err := servo.FromProvider(deps, a.Servo)
		if err != nil {
			sink.Publish(eventAttachFailed, strconv.Itoa(i))
			return [4]servo.Servo{}, errors.Wrapf(err, "cannot attach %s servo %q", a.Name, a.Servo)
		}
		sink.Publish(eventAttached, strconv.Itoa(i))
		servos[i] = s
	}
	return servos, nil
}

// attachIndicator returns the configured indicator pin, or nil if none is configured.
func attachIndicator(deps resource.Dependencies, conf *armutils.Config) (Indicator, error) {
	if conf.Indicator == nil {
		return nil, nil
	}
	b, err := board.FromProvider(deps, conf.Indicator.Board)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot find indicator board %q", conf.Indicator.Board)
	}
	pin, err := b.GPIOPinByName(conf.Indicator.Pin)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get indicator pin %q", conf.Indicator.Pin)
	}
	return &pinIndicator{pin: pin}, nil
}

// poseCommand builds a command message setting every actuator to pick(spec).
func poseCommand(reg *Registry, pick func(ActuatorSpec) int) (string, error) {
	raw := "{}"
	for _, spec := range reg.Specs() {
		var err error
		if raw, err = sjson.Set(raw, string(spec.Name), pick(spec)); err != nil {
			return "", err
		}
	}
	return raw, nil
}

func minimumOf(spec ActuatorSpec) int  { return spec.Min }
func midpointOf(spec ActuatorSpec) int { return spec.Midpoint() }

// runStartupSweep drives every actuator to its minimum, holds for pause, then drives
// them all to their midpoints.
func (a *simpleArm) runStartupSweep(ctx context.Context, pause time.Duration) error {
	minPose, err := poseCommand(a.registry, minimumOf)
	if err != nil {
		return err
	}
	if _, err := a.HandleCommand(ctx, minPose); err != nil {
		return errors.Wrap(err, "moving to minimum pose")
	}

	if !utils.SelectContextOrWait(ctx, pause) {
		return ctx.Err()
	}

	midPose, err := poseCommand(a.registry, midpointOf)
	if err != nil {
		return err
	}
	if _, err := a.HandleCommand(ctx, midPose); err != nil {
		return errors.Wrap(err, "moving to midpoint pose")
	}
	return nil
}
