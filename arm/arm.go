// Package arm implements a four servo arm driven by JSON target commands.
package arm

/*
	The arm accepts a small JSON object naming targets for its base, left, right and
	grip servos. Each target is checked against that servo's safe range on its own:
	values out of range are dropped and reported, the rest are stored. After every
	command all four servos are driven to the stored targets and the indicator pin
	is flipped.
*/

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/generic"

	armutils "robot-arm/utils"
)

// Model is the model of the four servo arm.
var Model = armutils.ArmFamily.WithModel("simple-arm")

const (
	eventParseFailed = "DeserializationError"
	eventParsed      = "deserialized json"
)

// DoCommand verbs.
const (
	moveCommand      = "move_servo"
	targetsCommand   = "get_targets"
	eventsCommand    = "events"
	indicatorCommand = "indicator"
)

func init() {
	resource.RegisterService(
		generic.API,
		Model,
		resource.Registration[resource.Resource, *armutils.Config]{
			Constructor: newArm,
		},
	)
}

func newArm(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (resource.Resource, error) {
	newConf, err := resource.NativeConfig[*armutils.Config](conf)
	if err != nil {
		return nil, err
	}
	return newSimpleArm(ctx, conf.ResourceName().AsNamed(), deps, newConf, logger)
}

// simpleArm owns the target state and serializes commands against it.
type simpleArm struct {
	resource.Named
	resource.AlwaysRebuild

	logger   logging.Logger
	registry *Registry
	engine   *Engine
	events   *armutils.LogSink
	maxBytes int

	// cmdMu serializes commands through actuation; mu guards state only, so queries
	// never wait on a moving servo.
	cmdMu sync.Mutex
	mu    sync.Mutex
	state TargetState
}

func newSimpleArm(
	ctx context.Context,
	named resource.Named,
	deps resource.Dependencies,
	conf *armutils.Config,
	logger logging.Logger,
) (*simpleArm, error) {
	reg, err := NewRegistry(conf)
	if err != nil {
		return nil, err
	}
	state, err := NewTargetState(conf, reg)
	if err != nil {
		return nil, err
	}
	events := armutils.NewLogSink(logger, conf.HistorySize())

	servos, err := attachServos(deps, conf, events)
	if err != nil {
		return nil, err
	}
	indicator, err := attachIndicator(deps, conf)
	if err != nil {
		return nil, err
	}

	a := &simpleArm{
		Named:    named,
		logger:   logger,
		registry: reg,
		engine:   NewEngine(servos, indicator, events),
		events:   events,
		maxBytes: conf.CommandLimit(),
		state:    state,
	}

	if conf.SkipStartupSweep {
		logger.CInfof(ctx, "skipping startup sweep, targets are %+v", state)
		return a, nil
	}
	if err := a.runStartupSweep(ctx, time.Duration(conf.StartupPause())*time.Millisecond); err != nil {
		return nil, errors.Wrap(err, "startup sweep failed")
	}
	return a, nil
}

// FieldRejection is a requested target that was not applied.
type FieldRejection struct {
	Name  ActuatorName
	Value int
}

// CommandResult reports what one command changed.
type CommandResult struct {
	Accepted []ActuatorName
	Rejected []FieldRejection
	Targets  TargetState
}

// HandleCommand parses raw, applies every in-range target it names and drives the servos.
// The servos are driven even when raw cannot be parsed, in which case no target changes
// and the parse error is returned.
func (a *simpleArm) HandleCommand(ctx context.Context, raw string) (CommandResult, error) {
	a.cmdMu.Lock()
	defer a.cmdMu.Unlock()

	result, parseErr := a.resolveCommand(raw)

	applyErr := a.engine.Apply(ctx, result.Targets)
	if parseErr != nil {
		return result, multierr.Combine(errors.Wrap(parseErr, "command discarded"), applyErr)
	}
	return result, applyErr
}

// resolveCommand parses raw and commits its in-range fields under the state lock.
// The returned result carries a snapshot of the targets to actuate.
func (a *simpleArm) resolveCommand(raw string) (CommandResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var result CommandResult
	cmd, parseErr := ParseCommand(raw, a.maxBytes)
	if parseErr != nil {
		a.events.Publish(eventParseFailed, parseErr.Error())
	} else {
		a.events.Publish(eventParsed, raw)
		for _, name := range ActuatorOrder {
			v, ok := cmd.Value(name)
			if !ok {
				continue
			}
			if resolveField(&a.state, a.registry, name, v, a.events) {
				result.Accepted = append(result.Accepted, name)
			} else {
				result.Rejected = append(result.Rejected, FieldRejection{Name: name, Value: v})
			}
		}
	}
	result.Targets = a.state
	return result, parseErr
}

// Targets returns the current target of every actuator.
func (a *simpleArm) Targets() TargetState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// DoCommand is the command channel of the arm.
func (a *simpleArm) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	resp := map[string]interface{}{}

	if raw, ok := cmd[moveCommand]; ok {
		msg, err := commandText(raw)
		if err != nil {
			return nil, err
		}
		result, err := a.HandleCommand(ctx, msg)
		if err != nil {
			return nil, err
		}
		accepted := make([]interface{}, 0, len(result.Accepted))
		for _, name := range result.Accepted {
			accepted = append(accepted, string(name))
		}
		rejected := map[string]interface{}{}
		for _, r := range result.Rejected {
			rejected[string(r.Name)] = r.Value
		}
		resp["accepted"] = accepted
		resp["rejected"] = rejected
		resp["targets"] = result.Targets.Map()
	}
	if _, ok := cmd[targetsCommand]; ok {
		resp["targets"] = a.Targets().Map()
	}
	if _, ok := cmd[eventsCommand]; ok {
		recent := a.events.Recent()
		events := make([]interface{}, 0, len(recent))
		for _, e := range recent {
			events = append(events, map[string]interface{}{
				"name": e.Name,
				"data": e.Payload,
				"time": e.Time.Format(time.RFC3339Nano),
			})
		}
		resp["events"] = events
	}
	if _, ok := cmd[indicatorCommand]; ok {
		resp["indicator"] = a.engine.Indicator().Level()
	}

	if len(resp) == 0 {
		return nil, errors.Errorf("unknown command, expected one of %q, %q, %q or %q",
			moveCommand, targetsCommand, eventsCommand, indicatorCommand)
	}
	return resp, nil
}

// commandText turns a move_servo argument into the raw message to parse. Strings are
// used as is; maps are re-encoded with their recognized keys only.
func commandText(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			if isActuator(ActuatorName(k)) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		msg := "{}"
		for _, k := range keys {
			var err error
			if msg, err = sjson.Set(msg, k, v[k]); err != nil {
				return "", errors.Wrapf(err, "encoding %s", k)
			}
		}
		return msg, nil
	default:
		return "", errors.Errorf("%s expects a JSON string or an object, got %T", moveCommand, raw)
	}
}

// Close does nothing; the servos and the board belong to their own resources.
func (a *simpleArm) Close(ctx context.Context) error {
	a.logger.CDebug(ctx, "arm closed")
	return nil
}
