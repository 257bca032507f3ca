package main

import (
	"os"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, srv, err := setup()
	if err != nil {
		return err
	}
	if cfg.Banner {
		// stdout carries the protocol.
		printBanner(os.Stderr, cfg)
	}

	if err := srv.Serve(cmd.Context()); err != nil {
		logger.Error("Server exited with error", "error", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
