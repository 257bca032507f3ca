package tools

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/y0ug/mcptools/internal/registry"
)

type textOp string

const (
	opUppercase textOp = "uppercase"
	opLowercase textOp = "lowercase"
	opReverse   textOp = "reverse"
	opWordCount textOp = "word_count"
	opCharCount textOp = "char_count"
)

var textOps = []string{
	string(opUppercase), string(opLowercase), string(opReverse),
	string(opWordCount), string(opCharCount),
}

func textTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "text_utils",
		Description: "Perform various text utility operations. Supports: uppercase, lowercase, reverse, word_count, char_count",
		Parameters: []registry.ParameterSpec{
			param("text", registry.KindString, "The text to process"),
			param("operation", registry.KindString, "Operation: uppercase, lowercase, reverse, word_count, char_count"),
		},
		Handler: textUtils,
	}
}

func textUtils(_ context.Context, args registry.Args) (registry.Payload, error) {
	text, op := args.Str("text"), args.Str("operation")

	var result any
	switch textOp(op) {
	case opUppercase:
		result = strings.ToUpper(text)
	case opLowercase:
		result = strings.ToLower(text)
	case opReverse:
		result = reverse(text)
	case opWordCount:
		result = len(strings.Fields(text))
	case opCharCount:
		result = utf8.RuneCountInString(text)
	default:
		f := registry.Failf(registry.UnsupportedOperation, "Unknown operation: %s", op)
		f.Supported = textOps
		return nil, f
	}

	return registry.Payload{
		"result":        result,
		"operation":     op,
		"original_text": text,
	}, nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
