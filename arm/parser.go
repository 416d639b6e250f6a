package arm

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Envelope failures. Any of these discards the whole message.
var (
	ErrEmptyInput   = errors.New("EmptyInput")
	ErrNoMemory     = errors.New("NoMemory")
	ErrInvalidInput = errors.New("InvalidInput")
	ErrNotAnObject  = errors.New("NotAnObject")
)

// Command is one parsed message: an optional integer per actuator.
type Command struct {
	values map[ActuatorName]int
}

// Value returns the requested target for name, if the message specified one.
func (c Command) Value(name ActuatorName) (int, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Len is the number of actuators the message specified.
func (c Command) Len() int {
	return len(c.values)
}

// ParseCommand decodes a JSON object of actuator targets.
// Unknown keys are ignored and recognized keys without an integral numeric value are
// treated as absent. Syntax errors, oversize input and non-object roots fail the whole message.
func ParseCommand(raw string, maxBytes int) (Command, error) {
	if strings.TrimSpace(raw) == "" {
		return Command{}, ErrEmptyInput
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return Command{}, errors.Wrapf(ErrNoMemory, "message is %d bytes, limit is %d", len(raw), maxBytes)
	}
	if !gjson.Valid(raw) {
		return Command{}, ErrInvalidInput
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return Command{}, ErrNotAnObject
	}

	cmd := Command{values: make(map[ActuatorName]int, len(ActuatorOrder))}
	root.ForEach(func(key, value gjson.Result) bool {
		name := ActuatorName(key.String())
		if !isActuator(name) {
			return true
		}
		// a repeated key replaces what came before it, including with "absent"
		if v, ok := integerValue(value); ok {
			cmd.values[name] = v
		} else {
			delete(cmd.values, name)
		}
		return true
	})
	return cmd, nil
}

func isActuator(name ActuatorName) bool {
	for _, n := range ActuatorOrder {
		if n == name {
			return true
		}
	}
	return false
}

// integerValue accepts JSON numbers with no fractional part, such as 45, -3, 45.0 or 4.5e1.
// Values outside the int32 range are treated as absent however they are written.
func integerValue(value gjson.Result) (int, bool) {
	if value.Type != gjson.Number {
		return 0, false
	}
	if v, err := strconv.ParseInt(value.Raw, 10, 32); err == nil {
		return int(v), true
	}
	f := value.Num
	if math.Trunc(f) != f || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
