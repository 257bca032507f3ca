package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	callArgs []string
	callJSON string
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a tool in-process and print its result document",
	Example: `  mcp-tools call calculator --arg operation=add --arg a=2 --arg b=3
  mcp-tools call text_utils --json '{"text":"Hello World","operation":"word_count"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, srv, err := setup()
		if err != nil {
			return err
		}

		arguments, err := parseArguments(callJSON, callArgs)
		if err != nil {
			return err
		}

		res := srv.Call(cmd.Context(), args[0], arguments)
		if err := writeJSON(cmd.OutOrStdout(), res.Document()); err != nil {
			return err
		}
		if res.IsError() {
			return fmt.Errorf("tool %s failed: %s", args[0], res.Failure.Kind)
		}
		return nil
	},
}

// parseArguments merges a JSON object with key=value pairs; pairs win.
// Values from pairs stay strings and are coerced by the tool schema.
func parseArguments(raw string, pairs []string) (map[string]any, error) {
	arguments := make(map[string]any)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
			return nil, fmt.Errorf("parsing --json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.New("--arg expects key=value, got " + pair)
		}
		arguments[key] = value
	}
	return arguments, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil, "tool argument as key=value (repeatable)")
	callCmd.Flags().StringVar(&callJSON, "json", "", "tool arguments as a JSON object")
	rootCmd.AddCommand(callCmd)
}
