package common

import (
	"errors"
	"fmt"
	"strings"
)

// Operator names a timeseq operator selectable on the command line.
type Operator string

const (
	OperatorDebounce Operator = "debounce"
	OperatorDelay    Operator = "delay"
	OperatorThrottle Operator = "throttle"
	OperatorTimeout  Operator = "timeout"
	OperatorMeasure  Operator = "measure"
)

// Operators lists every supported operator in help order.
var Operators = []Operator{
	OperatorDebounce,
	OperatorDelay,
	OperatorThrottle,
	OperatorTimeout,
	OperatorMeasure,
}

// ErrUnknownOperator is returned by ParseOperator.
var ErrUnknownOperator = errors.New("unknown operator")

// ParseOperator resolves a case-insensitive operator name.
func ParseOperator(s string) (Operator, error) {
	name := Operator(strings.ToLower(strings.TrimSpace(s)))
	for _, op := range Operators {
		if op == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownOperator, s, OperatorList())
}

// OperatorList returns the operator names joined for help texts.
func OperatorList() string {
	names := make([]string, len(Operators))
	for i, op := range Operators {
		names[i] = string(op)
	}
	return strings.Join(names, "|")
}
