package core

import (
	"fmt"
	"strconv"

	"carrygo/pkg/client"
	"carrygo/pkg/logger"
)

// FlowContext is the shared state of one flow execution. Steps read caller
// parameters from Input, hand intermediate results to each other through
// Process, and write the response into Output.
type FlowContext struct {
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
	Client  *client.Client
	Log     *logger.Logger
}

func NewFlowContext(input map[string]any, client *client.Client, log *logger.Logger) *FlowContext {
	return &FlowContext{
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
		Client:  client,
		Log:     log,
	}
}

// ExtractString returns the input value for key as a string, empty when
// missing or not a string.
func (c *FlowContext) ExtractString(key string) string {
	if raw, ok := c.Input[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

// ExtractFloat tolerates both JSON numbers and numeric strings.
func (c *FlowContext) ExtractFloat(key string) (float64, bool) {
	raw, ok := c.Input[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func IsMissing(str string) bool {
	return len(str) == 0
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("required param [%v] is missing", paramName)
}
