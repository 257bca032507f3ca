package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, srv, err := setup()
		if err != nil {
			return err
		}
		tools := srv.Tools()
		if toolsJSON {
			return writeJSON(cmd.OutOrStdout(), tools)
		}

		out := cmd.OutOrStdout()
		for _, tool := range tools {
			var desc string
			if tool.Description != nil {
				desc = *tool.Description
			}
			fmt.Fprintf(out, "%s\n  %s\n", tool.Name, desc)

			required := make(map[string]bool, len(tool.InputSchema.Required))
			for _, name := range tool.InputSchema.Required {
				required[name] = true
			}
			names := make([]string, 0, len(tool.InputSchema.Properties))
			for name := range tool.InputSchema.Properties {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				prop := tool.InputSchema.Properties[name]
				var extra []string
				if required[name] {
					extra = append(extra, "required")
				}
				if prop.Default != nil {
					extra = append(extra, fmt.Sprintf("default %v", prop.Default))
				}
				fmt.Fprintf(out, "    %-10s %-8s %s", name, prop.Type, prop.Description)
				if len(extra) > 0 {
					fmt.Fprintf(out, " (%s)", strings.Join(extra, ", "))
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the server://info resource",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, srv, err := setup()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), srv.Info())
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print the MCP tool definitions as JSON")
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(infoCmd)
}
