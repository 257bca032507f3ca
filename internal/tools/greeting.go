package tools

import (
	"context"
	"fmt"

	"github.com/y0ug/mcptools/internal/registry"
)

type greetingStyle string

const (
	styleFormal       greetingStyle = "formal"
	styleCasual       greetingStyle = "casual"
	styleEnthusiastic greetingStyle = "enthusiastic"
)

func greetingTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "generate_greeting",
		Description: "Generate a personalized greeting message. Supports different styles: formal, casual, enthusiastic",
		Parameters: []registry.ParameterSpec{
			param("name", registry.KindString, "The name of the person to greet"),
			optional("style", registry.String(string(styleCasual)), "The greeting style: formal, casual, enthusiastic"),
		},
		Handler: generateGreeting,
	}
}

func generateGreeting(_ context.Context, args registry.Args) (registry.Payload, error) {
	name, style := args.Str("name"), args.Str("style")
	return registry.Payload{
		"name":     name,
		"style":    style,
		"greeting": greet(name, greetingStyle(style)),
	}, nil
}

// greet falls back to the casual style for unknown styles.
func greet(name string, style greetingStyle) string {
	switch style {
	case styleFormal:
		return fmt.Sprintf("Dear %s, I hope this message finds you well.", name)
	case styleEnthusiastic:
		return fmt.Sprintf("🎉 Hello %s! Great to see you! 🎉", name)
	default:
		return fmt.Sprintf("Hey %s! How's it going?", name)
	}
}
