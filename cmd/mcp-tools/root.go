package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"

	"github.com/y0ug/mcptools"
	"github.com/y0ug/mcptools/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "mcp-tools",
	Short: "mcp-tools is a demo MCP server with utility tools",
	Long: `mcp-tools exposes a calculator, a mock weather lookup, a greeting
generator, date/time information and text utilities as MCP tools, plus a
server://info resource. Without a subcommand it serves MCP on stdio.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("banner", false, "print a banner on stderr at startup")
	flags.Bool("debug-frames", false, "log every JSON-RPC frame at debug level")
	flags.StringSlice("disable", nil, "tools to leave out of the registry")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("banner", flags.Lookup("banner"))
	_ = v.BindPFlag("debug.frames", flags.Lookup("debug-frames"))
	_ = v.BindPFlag("tools.disabled", flags.Lookup("disable"))
}

// setup loads the configuration and builds the logger and the server.
func setup() (config.Config, *slog.Logger, *mcptools.Server, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	srv, err := mcptools.NewServer(logger, mcptools.Options{
		Identity: mcptools.Identity{
			Name:        cfg.Server.Name,
			Version:     cfg.Server.Version,
			Description: cfg.Server.Description,
		},
		DisabledTools: cfg.Tools.Disabled,
		DebugFrames:   cfg.Debug.Frames,
	})
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("creating server: %w", err)
	}
	return cfg, logger, srv, nil
}

func printBanner(w io.Writer, cfg config.Config) {
	tpl := "{{ .Title \"MCP-TOOLS\" \"\" 0 }}\nVersion: " + cfg.Server.Version + "\n"
	banner.Init(w, true, false, bytes.NewBufferString(tpl))
}
