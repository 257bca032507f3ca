package tools

import (
	"context"
	"strings"

	"github.com/y0ug/mcptools/internal/registry"
)

type arithOp string

const (
	opAdd      arithOp = "add"
	opSubtract arithOp = "subtract"
	opMultiply arithOp = "multiply"
	opDivide   arithOp = "divide"
)

var arithOps = []string{string(opAdd), string(opSubtract), string(opMultiply), string(opDivide)}

type calculatorInput struct {
	Operation string  `mapstructure:"operation"`
	A         float64 `mapstructure:"a"`
	B         float64 `mapstructure:"b"`
}

func calculatorTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "calculator",
		Description: "Perform basic arithmetic operations. Supports: add, subtract, multiply, divide",
		Parameters: []registry.ParameterSpec{
			param("operation", registry.KindString, "The operation to perform: add, subtract, multiply, divide"),
			param("a", registry.KindNumber, "The first number"),
			param("b", registry.KindNumber, "The second number"),
		},
		Handler: calculate,
	}
}

func calculate(_ context.Context, args registry.Args) (registry.Payload, error) {
	var in calculatorInput
	if err := args.Decode(&in); err != nil {
		return nil, err
	}

	var result float64
	switch arithOp(in.Operation) {
	case opAdd:
		result = in.A + in.B
	case opSubtract:
		result = in.A - in.B
	case opMultiply:
		result = in.A * in.B
	case opDivide:
		if in.B == 0 {
			return nil, &registry.Failure{
				Kind:    registry.DivisionByZero,
				Message: "Division by zero",
				Details: registry.Payload{"operation": in.Operation, "a": in.A, "b": in.B},
			}
		}
		result = in.A / in.B
	default:
		f := registry.Failf(registry.UnsupportedOperation,
			"Unknown operation: %s. Supported: %s", in.Operation, strings.Join(arithOps, ", "))
		f.Supported = arithOps
		return nil, f
	}

	return registry.Payload{
		"operation": in.Operation,
		"a":         in.A,
		"b":         in.B,
		"result":    result,
	}, nil
}
